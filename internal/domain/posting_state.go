package domain

import (
	"fmt"

	"pcd-jobs-backend/pkg/apperror"
)

// PostingAction names a transition of the posting state machine.
type PostingAction string

const (
	ActionSubmitForReview   PostingAction = "submit_for_review"
	ActionApprove           PostingAction = "approve"
	ActionReject            PostingAction = "reject"
	ActionRequestAdjustment PostingAction = "request_adjustments"
	ActionPublish           PostingAction = "publish"
	ActionPause             PostingAction = "pause"
	ActionClose             PostingAction = "close"
	ActionEdit              PostingAction = "edit"
	ActionDelete            PostingAction = "delete"
)

type transition struct {
	from []PostingStatus
	to   PostingStatus
}

// postingTransitions is the complete table of legal transitions. Delete
// keeps the status (the row goes away) and is listed so its allowed
// sources live next to the others.
var postingTransitions = map[PostingAction]transition{
	ActionSubmitForReview:   {from: []PostingStatus{PostingStatusDraft}, to: PostingStatusPendingReview},
	ActionApprove:           {from: []PostingStatus{PostingStatusPendingReview}, to: PostingStatusApproved},
	ActionReject:            {from: []PostingStatus{PostingStatusPendingReview}, to: PostingStatusRejected},
	ActionRequestAdjustment: {from: []PostingStatus{PostingStatusPendingReview}, to: PostingStatusAdjustmentsNeeded},
	ActionPublish:           {from: []PostingStatus{PostingStatusApproved}, to: PostingStatusOpen},
	ActionPause:             {from: []PostingStatus{PostingStatusOpen, PostingStatusApproved}, to: PostingStatusPaused},
	ActionClose:             {from: []PostingStatus{PostingStatusOpen}, to: PostingStatusClosed},
	ActionEdit: {
		from: []PostingStatus{PostingStatusDraft, PostingStatusRejected, PostingStatusAdjustmentsNeeded, PostingStatusPaused},
		to:   PostingStatusDraft,
	},
	ActionDelete: {
		from: []PostingStatus{PostingStatusDraft, PostingStatusRejected, PostingStatusAdjustmentsNeeded, PostingStatusClosed},
	},
}

// NextPostingStatus returns the status reached by applying action in
// current, or an invalid_state error carrying current.
func NextPostingStatus(current PostingStatus, action PostingAction) (PostingStatus, error) {
	t, ok := postingTransitions[action]
	if !ok {
		return current, apperror.InvalidState(fmt.Sprintf("Unknown posting action %q", action), string(current))
	}
	for _, s := range t.from {
		if s == current {
			if t.to == "" {
				return current, nil
			}
			return t.to, nil
		}
	}
	return current, apperror.InvalidState(
		fmt.Sprintf("Cannot %s a posting in status %s", action, current),
		string(current),
	)
}

// CanApply reports whether action is legal from current.
func CanApply(current PostingStatus, action PostingAction) bool {
	_, err := NextPostingStatus(current, action)
	return err == nil
}

// IsEditable mirrors the edit row of the transition table.
func (p Posting) IsEditable() bool {
	return CanApply(p.Status, ActionEdit)
}

// DecisionAction maps an evaluation outcome to the posting transition it
// drives; the posting status mirrors the outcome 1:1.
func DecisionAction(outcome EvaluationStatus) (PostingAction, bool) {
	switch outcome {
	case EvaluationStatusApproved:
		return ActionApprove, true
	case EvaluationStatusRejected:
		return ActionReject, true
	case EvaluationStatusAdjustmentsNeeded:
		return ActionRequestAdjustment, true
	default:
		return "", false
	}
}
