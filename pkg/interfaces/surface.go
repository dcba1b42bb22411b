package interfaces

import "context"

// Surface is the outbound half of the engine ⇄ editing-surface channel. The
// engine posts typed protocol messages; the transport (in-process queue,
// framed byte stream, webview bridge) is the host's concern.
type Surface interface {
	Post(ctx context.Context, message any) error
}
