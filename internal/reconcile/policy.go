package reconcile

import "github.com/makersnr-dev/qr-order-nr-admin-v2/internal/model"

// MergePolicy decides how an incoming upstream order row is merged with the
// mirror row it replaces. existing is nil for a first-seen order.
type MergePolicy func(incoming model.OrderMirror, existing *model.OrderMirror) model.OrderMirror

// OverwriteAll lets the incoming row win wholesale. A sync may therefore
// overwrite a locally flipped cleared/status with the upstream's stale value.
func OverwriteAll(incoming model.OrderMirror, existing *model.OrderMirror) model.OrderMirror {
	return incoming
}

// PreserveCleared lets the incoming row win except for the cleared flag,
// which keeps its locally stored value for orders already mirrored.
func PreserveCleared(incoming model.OrderMirror, existing *model.OrderMirror) model.OrderMirror {
	if existing != nil {
		incoming.Cleared = existing.Cleared
	}
	return incoming
}
