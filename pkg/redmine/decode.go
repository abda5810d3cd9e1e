package redmine

import "github.com/danielolaszy/redmine/pkg/models"

func decodeAudit(d Document) models.Audit {
	return models.Audit{
		CreatedOn: d.DateTime("created_on"),
		UpdatedOn: d.DateTime("updated_on"),
		User:      d.Ref("user"),
	}
}

// DecodeIssue builds an issue from its JSON object.
func DecodeIssue(d Document) models.Issue {
	issue := models.Issue{
		ID:             d.ID("id"),
		Subject:        d.String("subject"),
		Description:    d.String("description"),
		DoneRatio:      d.Float("done_ratio"),
		Author:         d.Ref("author"),
		AssignedTo:     d.Ref("assigned_to"),
		Category:       d.Ref("category"),
		Priority:       d.Ref("priority"),
		Project:        d.Ref("project"),
		Status:         d.Ref("status"),
		Tracker:        d.Ref("tracker"),
		Version:        d.Ref("fixed_version"),
		StartDate:      d.Date("start_date"),
		DueDate:        d.Date("due_date"),
		EstimatedHours: d.Float("estimated_hours"),
		Audit:          decodeAudit(d),
	}

	// The parent is an object in current Redmine versions and a bare id in
	// older ones.
	if parent := d.Get("parent"); parent.IsObject() {
		issue.ParentID = parent.ID("id")
	} else {
		issue.ParentID = d.ID("parent_id")
	}

	d.Get("custom_fields").Each(func(cf Document) {
		issue.CustomFields = append(issue.CustomFields, models.CustomFieldValue{
			ID:       cf.ID("id"),
			Name:     cf.String("name"),
			Values:   cf.Strings("value"),
			Multiple: cf.Bool("multiple"),
		})
	})
	return issue
}

// DecodeProject builds a project from its JSON object.
func DecodeProject(d Document) models.Project {
	project := models.Project{
		ID:          d.ID("id"),
		Name:        d.String("name"),
		Identifier:  d.String("identifier"),
		Description: d.String("description"),
		IsPublic:    d.Bool("is_public"),
		Parent:      d.Ref("parent"),
		Categories:  d.Refs("issue_categories"),
		Trackers:    d.Refs("trackers"),
		Audit:       decodeAudit(d),
	}
	d.Get("enabled_modules").Each(func(m Document) {
		project.EnabledModules = append(project.EnabledModules, m.String("name"))
	})
	return project
}

// DecodeUser builds a user from its JSON object.
func DecodeUser(d Document) models.User {
	return models.User{
		ID:          d.ID("id"),
		Login:       d.String("login"),
		FirstName:   d.String("firstname"),
		LastName:    d.String("lastname"),
		Mail:        d.String("mail"),
		LastLoginOn: d.DateTime("last_login_on"),
		Audit:       decodeAudit(d),
	}
}

func DecodeTracker(d Document) models.Tracker {
	return models.Tracker{
		ID:    d.ID("id"),
		Name:  d.String("name"),
		Audit: decodeAudit(d),
	}
}

func DecodeIssueStatus(d Document) models.IssueStatus {
	return models.IssueStatus{
		ID:        d.ID("id"),
		Name:      d.String("name"),
		IsClosed:  d.Bool("is_closed"),
		IsDefault: d.Bool("is_default"),
		Audit:     decodeAudit(d),
	}
}

func DecodeEnumeration(d Document) models.Enumeration {
	return models.Enumeration{
		ID:        d.ID("id"),
		Name:      d.String("name"),
		IsDefault: d.Bool("is_default"),
		Audit:     decodeAudit(d),
	}
}

func DecodeTimeEntry(d Document) models.TimeEntry {
	return models.TimeEntry{
		ID:       d.ID("id"),
		Activity: d.Ref("activity"),
		Issue:    d.Ref("issue"),
		Project:  d.Ref("project"),
		Hours:    d.Float("hours"),
		Comment:  d.String("comments"),
		SpentOn:  d.Date("spent_on"),
		Audit:    decodeAudit(d),
	}
}

func DecodeMembership(d Document) models.Membership {
	return models.Membership{
		ID:      d.ID("id"),
		Project: d.Ref("project"),
		User:    d.Ref("user"),
		Group:   d.Ref("group"),
		Roles:   d.Refs("roles"),
	}
}

func DecodeVersion(d Document) models.Version {
	return models.Version{
		ID:          d.ID("id"),
		Project:     d.Ref("project"),
		Name:        d.String("name"),
		Description: d.String("description"),
		Status:      d.String("status"),
		Sharing:     d.String("sharing"),
		DueDate:     d.Date("due_date"),
		Audit:       decodeAudit(d),
	}
}

func DecodeIssueCategory(d Document) models.IssueCategory {
	return models.IssueCategory{
		ID:         d.ID("id"),
		Name:       d.String("name"),
		Project:    d.Ref("project"),
		AssignedTo: d.Ref("assigned_to"),
	}
}

// DecodeCustomField builds a custom field definition. Possible values are
// given either as plain strings or as {"value": ...} objects.
func DecodeCustomField(d Document) models.CustomField {
	cf := models.CustomField{
		ID:           d.ID("id"),
		Name:         d.String("name"),
		Type:         d.String("customized_type"),
		Format:       d.String("field_format"),
		Regex:        d.String("regexp"),
		DefaultValue: d.String("default_value"),
		MinLength:    d.Int("min_length"),
		MaxLength:    d.Int("max_length"),
		AllProjects:  d.Bool("is_for_all"),
		IsRequired:   d.Bool("is_required"),
		IsFilter:     d.Bool("is_filter"),
		Searchable:   d.Bool("searchable"),
		Multiple:     d.Bool("multiple"),
		Visible:      d.Bool("visible"),
		Trackers:     d.Refs("trackers"),
		Projects:     d.Refs("projects"),
	}
	d.Get("possible_values").Each(func(v Document) {
		if v.IsObject() {
			cf.PossibleValues = append(cf.PossibleValues, v.String("value"))
			return
		}
		cf.PossibleValues = append(cf.PossibleValues, v.r.String())
	})
	return cf
}
