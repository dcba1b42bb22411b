package interfaces

import "context"

// ChangeReason classifies how a document snapshot came to differ from the
// previous one. Hosts that cannot classify changes should leave it empty;
// the engine ignores unclassified notifications as host-internal churn.
type ChangeReason string

const (
	// ChangeReasonUnknown marks notifications the host could not attribute.
	ChangeReasonUnknown ChangeReason = ""
	// ChangeReasonUser marks an edit typed or applied by the user.
	ChangeReasonUser ChangeReason = "user"
	// ChangeReasonUndo marks a host-driven undo step.
	ChangeReasonUndo ChangeReason = "undo"
	// ChangeReasonRedo marks a host-driven redo step.
	ChangeReasonRedo ChangeReason = "redo"
	// ChangeReasonExternal marks a change applied by an external tool.
	ChangeReasonExternal ChangeReason = "external"
)

// DocumentSnapshot is the host's view of one open document at a point in
// time. The engine never owns the document; it only observes snapshots and
// requests whole-range edits through the Host.
type DocumentSnapshot struct {
	URI     string
	Text    string
	Version int
	Reason  ChangeReason
}

// NotifyLevel selects the severity of a host-visible notification.
type NotifyLevel string

const (
	NotifyInfo  NotifyLevel = "info"
	NotifyWarn  NotifyLevel = "warn"
	NotifyError NotifyLevel = "error"
)

// InputBoxOptions configures a host input prompt. Validate, when set, is
// invoked by the host on every keystroke; a non-empty return is shown as an
// inline validation message and blocks acceptance.
type InputBoxOptions struct {
	Prompt      string
	Placeholder string
	Value       string
	Validate    func(value string) string
}

// Host abstracts the primitives the embedding environment provides: document
// access, text edits, dialogs, and notifications. Every call may suspend the
// current operation; callers must re-check document liveness afterwards.
type Host interface {
	// Snapshot returns the current state of the document identified by uri.
	// The boolean is false when the document has been closed.
	Snapshot(uri string) (DocumentSnapshot, bool)

	// ApplyEdit replaces the document's full text. It reports whether the
	// host accepted the edit; a false result is not an error (the host may
	// reject an edit that races a concurrent external modification).
	ApplyEdit(ctx context.Context, uri string, text string) (bool, error)

	// Confirm presents a yes/no style question and reports the choice.
	Confirm(ctx context.Context, message string) (bool, error)

	// InputBox prompts for a single line of text. The boolean is false when
	// the prompt was dismissed without a value.
	InputBox(ctx context.Context, opts InputBoxOptions) (string, bool, error)

	// Notify surfaces a message to the user without interrupting flow.
	Notify(level NotifyLevel, message string)
}
