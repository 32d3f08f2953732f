package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownPriority         = errors.New("model: unknown priority")
	ErrUnknownNotificationType = errors.New("model: unknown notification type")
)

// Priority of a follow-up. The zero value means unset.
type Priority int

const (
	PriorityHigh Priority = iota + 1
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// ParsePriority reads "high", "medium" or "low", case-insensitively.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPriority, s)
}

func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p Priority) Value() (driver.Value, error) {
	return p.String(), nil
}

func (p *Priority) Scan(src any) error {
	v, err := ParsePriority(scanString(src))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// NotificationType selects the drawer icon and grouping.
type NotificationType int

const (
	NotificationMeeting NotificationType = iota + 1
	NotificationFollowUp
	NotificationDeadline
	NotificationReply
)

func (t NotificationType) String() string {
	switch t {
	case NotificationMeeting:
		return "meeting"
	case NotificationFollowUp:
		return "follow-up"
	case NotificationDeadline:
		return "deadline"
	case NotificationReply:
		return "reply"
	}
	return fmt.Sprintf("notification(%d)", int(t))
}

// ParseNotificationType reads the lowercase type name.
func ParseNotificationType(s string) (NotificationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "meeting":
		return NotificationMeeting, nil
	case "follow-up", "followup":
		return NotificationFollowUp, nil
	case "deadline":
		return NotificationDeadline, nil
	case "reply":
		return NotificationReply, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownNotificationType, s)
}

func (t NotificationType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *NotificationType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseNotificationType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t NotificationType) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *NotificationType) Scan(src any) error {
	v, err := ParseNotificationType(scanString(src))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ItemKind tags the entries shown inside a month-view cell.
type ItemKind int

const (
	KindMeeting ItemKind = iota + 1
	KindFollowUp
	KindEmail
)

func (k ItemKind) String() string {
	switch k {
	case KindMeeting:
		return "meeting"
	case KindFollowUp:
		return "follow-up"
	case KindEmail:
		return "email"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Rank orders kinds inside a day cell: meetings first, emails last.
func (k ItemKind) Rank() int {
	switch k {
	case KindMeeting:
		return 1
	case KindFollowUp:
		return 2
	case KindEmail:
		return 3
	}
	return 4
}

func (k ItemKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *ItemKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "meeting":
		*k = KindMeeting
	case "follow-up":
		*k = KindFollowUp
	case "email":
		*k = KindEmail
	default:
		return fmt.Errorf("model: unknown item kind %q", s)
	}
	return nil
}

func scanString(src any) string {
	switch v := src.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
