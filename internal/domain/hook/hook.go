package hook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TemplateWeb is the only hook template: an HTTP POST to a payload URL
const TemplateWeb = "Web"

// ContentType is the encoding of delivered payloads
type ContentType string

const (
	ContentTypeJSON ContentType = "json"
	ContentTypeForm ContentType = "form"
)

// MIME returns the HTTP content type header value
func (c ContentType) MIME() string {
	if c == ContentTypeForm {
		return "application/x-www-form-urlencoded"
	}
	return "application/json"
}

// Event is an (entity, action) pair a hook subscribes to, e.g. LOAN/DISBURSE
type Event struct {
	EntityName string
	ActionName string
}

// Hook forwards processed commands to an external HTTP endpoint
type Hook struct {
	shared.TenantAggregateRoot
	Name        string
	DisplayName string
	Active      bool
	Events      []Event
	PayloadURL  string
	ContentType ContentType
	Secret      string
}

// Input carries the editable attributes of a hook
type Input struct {
	DisplayName string
	Active      bool
	Events      []Event
	PayloadURL  string
	ContentType ContentType
	Secret      string
}

// NewHook validates and creates a web hook
func NewHook(tenantID uuid.UUID, in Input) (*Hook, error) {
	h := &Hook{TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID), Name: TemplateWeb}
	if err := h.Update(in); err != nil {
		return nil, err
	}
	h.Version = 1
	return h, nil
}

// Update replaces the hook definition
func (h *Hook) Update(in Input) error {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.DisplayName == "" || len(in.DisplayName) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Hook display name must be 1 to 100 characters")
	}
	u, err := url.Parse(strings.TrimSpace(in.PayloadURL))
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return shared.NewDomainError("HOOK_INVALID_URL", "Payload URL must be an absolute http(s) URL")
	}
	switch in.ContentType {
	case "":
		in.ContentType = ContentTypeJSON
	case ContentTypeJSON, ContentTypeForm:
	default:
		return shared.NewDomainError("HOOK_INVALID_CONTENT_TYPE", "Content type must be json or form")
	}
	if len(in.Events) == 0 {
		return shared.NewDomainError("HOOK_EVENTS_REQUIRED", "A hook needs at least one event")
	}
	events := make([]Event, 0, len(in.Events))
	seen := make(map[Event]bool, len(in.Events))
	for _, e := range in.Events {
		e = Event{EntityName: strings.ToUpper(strings.TrimSpace(e.EntityName)), ActionName: strings.ToUpper(strings.TrimSpace(e.ActionName))}
		if e.EntityName == "" || e.ActionName == "" {
			return shared.NewDomainError("HOOK_INVALID_EVENT", "Hook events need an entity and an action")
		}
		if !seen[e] {
			seen[e] = true
			events = append(events, e)
		}
	}
	h.DisplayName = in.DisplayName
	h.Active = in.Active
	h.Events = events
	h.PayloadURL = u.String()
	h.ContentType = in.ContentType
	h.Secret = in.Secret
	h.Touch()
	h.IncrementVersion()
	return nil
}

// Matches reports whether the hook fires for entity/action. "*" in a
// subscription matches any value.
func (h *Hook) Matches(entity, action string) bool {
	if !h.Active {
		return false
	}
	entity, action = strings.ToUpper(entity), strings.ToUpper(action)
	for _, e := range h.Events {
		if (e.EntityName == "*" || e.EntityName == entity) && (e.ActionName == "*" || e.ActionName == action) {
			return true
		}
	}
	return false
}

// Sign returns the signature header value for body, or "" without a secret
func (h *Hook) Sign(body []byte) string {
	if h.Secret == "" {
		return ""
	}
	return Sign(h.Secret, body)
}

// Sign computes sha256=<hex HMAC> of body
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
