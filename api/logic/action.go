/* action.go
 * Contains the reducer that turns a user's login state and application status into the primary contest action.
 * The reducer is pure, callers run the mutation the action describes
 * Authors: Gamers Bot contributors
 */

package logic

import (
	"fmt"

	"gamers-bot/api/shared"
)

// ActionKind tells the caller what clicking the primary action does
type ActionKind int

const (
	// PromptLogin asks the user to confirm a redirect to the login page
	PromptLogin ActionKind = iota
	// OpenApplication opens the application session with its point gate
	OpenApplication
	// ConfirmCancel asks for confirmation and then cancels the pending application
	ConfirmCancel
	// ShowJoined shows an informational message only
	ShowJoined
)

func (k ActionKind) String() string {
	switch k {
	case PromptLogin:
		return "prompt_login"
	case OpenApplication:
		return "open_application"
	case ConfirmCancel:
		return "confirm_cancel"
	case ShowJoined:
		return "show_joined"
	default:
		return "unknown"
	}
}

func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ActionKind) UnmarshalText(text []byte) error {
	for _, kind := range []ActionKind{PromptLogin, OpenApplication, ConfirmCancel, ShowJoined} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown action kind %q", text)
}

// Variant is the visual weight of the action
type Variant string

const (
	VariantPrimary     Variant = "primary"
	VariantDestructive Variant = "destructive"
	VariantSecondary   Variant = "secondary"
)

const (
	LabelApply         = "apply"
	LabelCancel        = "cancel application"
	LabelAlreadyJoined = "already joined"

	LoginPath = "/login"
)

// Action is the derived primary action for a contest
type Action struct {
	Label   string     `json:"label"`
	Variant Variant    `json:"variant"`
	Kind    ActionKind `json:"kind"`
	// NeedsConfirm is set for kinds that must be confirmed before anything happens
	NeedsConfirm bool   `json:"needs_confirm"`
	Prompt       string `json:"prompt,omitempty"`
	// RedirectPath is where a confirmed PromptLogin goes
	RedirectPath string `json:"redirect_path,omitempty"`
	Disabled     bool   `json:"disabled"`
}

// DeriveAction returns the primary action for the given login state and application status.
// Preconditions: Receives whether the user is logged in and their application status, which may be any value
// Postconditions: Returns one of the four actions. Unknown statuses are handled as NONE
func DeriveAction(isLoggedIn bool, status shared.ApplicationStatus) Action {
	if !isLoggedIn {
		return Action{
			Label:        LabelApply,
			Variant:      VariantPrimary,
			Kind:         PromptLogin,
			NeedsConfirm: true,
			Prompt:       "You need to log in to apply. Go to the login page?",
			RedirectPath: LoginPath,
		}
	}

	switch status.Normalize() {
	case shared.StatusPending:
		return Action{
			Label:        LabelCancel,
			Variant:      VariantDestructive,
			Kind:         ConfirmCancel,
			NeedsConfirm: true,
			Prompt:       "Cancel your application to this contest?",
		}
	case shared.StatusAccepted:
		return Action{
			Label:    LabelAlreadyJoined,
			Variant:  VariantSecondary,
			Kind:     ShowJoined,
			Prompt:   "You are already part of this contest.",
			Disabled: true,
		}
	default:
		// NONE and REJECTED can both (re)apply
		return Action{
			Label:   LabelApply,
			Variant: VariantPrimary,
			Kind:    OpenApplication,
		}
	}
}
