// Package action carries console mutations from dialogs to the platform API.
//
// A dialog never mutates anything itself: it emits a Form whose _action field
// names the operation. Handler interprets the form against the API and
// Submitter wraps each run in a Submission handle so an identical form cannot
// be in flight twice.
package action

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Kind is the _action discriminator.
type Kind string

const (
	CreateAPIKey  Kind = "createAPIKey"
	DeleteAPIKey  Kind = "deleteAPIKey"
	UpdateProject Kind = "updateProject"
	DeleteProject Kind = "deleteProject"
	RemoveUser    Kind = "removeUser"
)

// Form field names.
const (
	FieldAction      = "_action"
	FieldAPIKeyID    = "apiKeyId"
	FieldUserID      = "userId"
	FieldName        = "name"
	FieldDescription = "description"
)

// ErrUnknownAction is returned by ParseForm for a missing or unrecognized
// _action value.
var ErrUnknownAction = errors.New("unknown action")

var kinds = map[Kind]bool{
	CreateAPIKey:  true,
	DeleteAPIKey:  true,
	UpdateProject: true,
	DeleteProject: true,
	RemoveUser:    true,
}

// Valid reports whether k is one of the known actions.
func (k Kind) Valid() bool {
	return kinds[k]
}

// Form is a single submitted mutation.
type Form struct {
	Action Kind
	Values url.Values
}

// NewForm builds a form from alternating field/value pairs.
// A trailing field without a value is ignored.
func NewForm(kind Kind, pairs ...string) Form {
	f := Form{Action: kind, Values: url.Values{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		f.Values.Set(pairs[i], pairs[i+1])
	}
	return f
}

// Get returns the first value of field, or "".
func (f Form) Get(field string) string {
	if f.Values == nil {
		return ""
	}
	return f.Values.Get(field)
}

// Encode renders the form as application/x-www-form-urlencoded, _action
// included. Keys are sorted so equal forms encode identically.
func (f Form) Encode() string {
	v := url.Values{}
	for k, vs := range f.Values {
		if k == FieldAction {
			continue
		}
		v[k] = append([]string(nil), vs...)
	}
	v.Set(FieldAction, string(f.Action))
	return v.Encode()
}

// String is a short description for logs: the action and its field names,
// never the values.
func (f Form) String() string {
	fields := make([]string, 0, len(f.Values))
	for k := range f.Values {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s[%s]", f.Action, strings.Join(fields, ","))
}

// ParseForm decodes an urlencoded body produced by Encode.
func ParseForm(body string) (Form, error) {
	v, err := url.ParseQuery(body)
	if err != nil {
		return Form{}, fmt.Errorf("parse form: %w", err)
	}
	kind := Kind(v.Get(FieldAction))
	if !kind.Valid() {
		return Form{}, fmt.Errorf("%w: %q", ErrUnknownAction, kind)
	}
	v.Del(FieldAction)
	return Form{Action: kind, Values: v}, nil
}
