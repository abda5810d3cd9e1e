// Package models defines the Redmine record types shared across the application.
//
// Records are plain values built once from a response and never mutated
// afterwards. Related resources are referenced shallowly through Ref (an id
// and a name) instead of nested records.
package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// NullID is the wire form of an absent identifier.
const NullID = -1

// ID is an optional Redmine identifier. The zero value is "no id".
type ID struct {
	value int
	set   bool
}

// NewID returns a set identifier.
func NewID(v int) ID {
	return ID{value: v, set: true}
}

// IDFromWire converts a wire identifier, mapping NullID to an unset ID.
func IDFromWire(v int) ID {
	if v == NullID {
		return ID{}
	}
	return NewID(v)
}

// IsSet reports whether the identifier carries a value.
func (id ID) IsSet() bool {
	return id.set
}

// Int returns the identifier value, or NullID when unset.
func (id ID) Int() int {
	if !id.set {
		return NullID
	}
	return id.value
}

func (id ID) String() string {
	if !id.set {
		return ""
	}
	return strconv.Itoa(id.value)
}

// MarshalJSON writes the identifier as a number, or null when unset.
func (id ID) MarshalJSON() ([]byte, error) {
	if !id.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(id.value)), nil
}

// UnmarshalJSON accepts a number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ID{}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*id = IDFromWire(v)
	return nil
}

// Ref is a shallow reference to another resource.
type Ref struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Audit holds the created/updated/owning-user triple most resources carry.
type Audit struct {
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
	User      Ref       `json:"user"`
}

// CustomFieldValue is the value of a custom field on an issue.
type CustomFieldValue struct {
	ID       ID       `json:"id"`
	Name     string   `json:"name"`
	Values   []string `json:"values"`
	Multiple bool     `json:"multiple"`
}

// Issue represents a Redmine issue.
type Issue struct {
	ID       ID `json:"id"`
	ParentID ID `json:"parent_id"`

	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	DoneRatio   float64 `json:"done_ratio"`

	Author     Ref `json:"author"`
	AssignedTo Ref `json:"assigned_to"`
	Category   Ref `json:"category"`
	Priority   Ref `json:"priority"`
	Project    Ref `json:"project"`
	Status     Ref `json:"status"`
	Tracker    Ref `json:"tracker"`
	Version    Ref `json:"fixed_version"`

	StartDate      time.Time `json:"start_date"`
	DueDate        time.Time `json:"due_date"`
	EstimatedHours float64   `json:"estimated_hours"`

	CustomFields []CustomFieldValue `json:"custom_fields"`

	Audit
}

// Project represents a Redmine project.
type Project struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Identifier  string `json:"identifier"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
	Parent      Ref    `json:"parent"`

	Categories     []Ref    `json:"issue_categories"`
	Trackers       []Ref    `json:"trackers"`
	EnabledModules []string `json:"enabled_modules"`

	Audit
}

// User represents a Redmine user.
type User struct {
	ID          ID        `json:"id"`
	Login       string    `json:"login"`
	FirstName   string    `json:"firstname"`
	LastName    string    `json:"lastname"`
	Mail        string    `json:"mail"`
	LastLoginOn time.Time `json:"last_login_on"`

	Audit
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Tracker represents a Redmine tracker.
type Tracker struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`

	Audit
}

// IssueStatus represents a Redmine issue status.
type IssueStatus struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	IsClosed  bool   `json:"is_closed"`
	IsDefault bool   `json:"is_default"`

	Audit
}

// Enumeration is an entry of a controlled vocabulary such as issue
// priorities or time entry activities.
type Enumeration struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`

	Audit
}

// TimeEntry represents time spent on an issue or project.
type TimeEntry struct {
	ID       ID        `json:"id"`
	Activity Ref       `json:"activity"`
	Issue    Ref       `json:"issue"`
	Project  Ref       `json:"project"`
	Hours    float64   `json:"hours"`
	Comment  string    `json:"comments"`
	SpentOn  time.Time `json:"spent_on"`

	Audit
}

// Membership links a user or group to a project.
type Membership struct {
	ID      ID    `json:"id"`
	Project Ref   `json:"project"`
	User    Ref   `json:"user"`
	Group   Ref   `json:"group"`
	Roles   []Ref `json:"roles"`
}

// Version represents a project version (milestone).
type Version struct {
	ID          ID        `json:"id"`
	Project     Ref       `json:"project"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Sharing     string    `json:"sharing"`
	DueDate     time.Time `json:"due_date"`

	Audit
}

// CustomField describes a custom field definition.
type CustomField struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"customized_type"`
	Format       string `json:"field_format"`
	Regex        string `json:"regex"`
	DefaultValue string `json:"default_value"`
	MinLength    int    `json:"min_length"`
	MaxLength    int    `json:"max_length"`

	AllProjects bool `json:"is_for_all"`
	IsRequired  bool `json:"is_required"`
	IsFilter    bool `json:"is_filter"`
	Searchable  bool `json:"searchable"`
	Multiple    bool `json:"multiple"`
	Visible     bool `json:"visible"`

	PossibleValues []string `json:"possible_values"`
	Trackers       []Ref    `json:"trackers"`
	Projects       []Ref    `json:"projects"`
}

// IssueCategory represents a category of issues inside a project.
type IssueCategory struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	Project    Ref    `json:"project"`
	AssignedTo Ref    `json:"assigned_to"`
}
