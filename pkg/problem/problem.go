// Package problem defines the error body returned by the pharmascript API
// and shared by the server and the client.
package problem

import "fmt"

const (
	ContentType = "application/problem+json"

	DefaultType        = "about:blank"
	TypeWithMessage    = "https://pharmascript.app/problem/problem-with-message"
	TypeValidation     = "https://pharmascript.app/problem/constraint-violation"
	TypeEntityNotFound = "https://pharmascript.app/problem/entity-not-found"
)

// Error keys. The message field of a problem is "error." + key.
const (
	KeyIDExists          = "idexists"
	KeyIDNull            = "idnull"
	KeyIDInvalid         = "idinvalid"
	KeyIDNotFound        = "idnotfound"
	KeyValidation        = "validation"
	KeyReferenceNotFound = "referencenotfound"
	KeyNotFound          = "notfound"
	KeyBadRequest        = "badrequest"
	KeyUnauthorized      = "unauthorized"
	KeyForbidden         = "forbidden"
	KeyTooManyRequests   = "toomanyrequests"
	KeyPayloadTooLarge   = "payloadtoolarge"
	KeyTimeout           = "timeout"
	KeyInternal          = "internal"
)

// Problem is an RFC 7807 body extended with the entity name and error key
// the admin screens use to pick a translated message.
type Problem struct {
	Type        string       `json:"type,omitempty"`
	Title       string       `json:"title,omitempty"`
	Status      int          `json:"status,omitempty"`
	Detail      string       `json:"detail,omitempty"`
	Path        string       `json:"path,omitempty"`
	Message     string       `json:"message,omitempty"`
	EntityName  string       `json:"entityName,omitempty"`
	ErrorKey    string       `json:"errorKey,omitempty"`
	Params      string       `json:"params,omitempty"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
}

// FieldError names one invalid field of a submitted entity.
type FieldError struct {
	ObjectName string `json:"objectName"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

// New builds a problem for an error key. entity may be empty.
func New(status int, title, entity, key string) *Problem {
	typ := DefaultType
	if entity != "" {
		typ = TypeWithMessage
	}
	return &Problem{
		Type:       typ,
		Title:      title,
		Status:     status,
		Message:    "error." + key,
		EntityName: entity,
		ErrorKey:   key,
		Params:     entity,
	}
}

func (p *Problem) Error() string {
	if p.ErrorKey != "" {
		return fmt.Sprintf("%d %s (%s)", p.Status, p.Title, p.Message)
	}
	return fmt.Sprintf("%d %s", p.Status, p.Title)
}
