package cloudevents

import (
	"context"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/protocol"

	"github.com/fxsml/slimasync"
)

// Receiver returns a handler for cloudevents.Client.StartReceiver that
// dispatches every incoming event as a standard action. Events that cannot
// be converted or whose dispatch fails are NACKed.
func Receiver(dispatch slimasync.DispatchFunc) func(context.Context, cloudevents.Event) protocol.Result {
	return func(ctx context.Context, e cloudevents.Event) protocol.Result {
		a, err := FromEvent(&e)
		if err != nil {
			return protocol.NewReceipt(false, "%s", err.Error())
		}
		if _, err := dispatch(ctx, a); err != nil {
			return protocol.NewReceipt(false, "%s", err.Error())
		}
		return protocol.ResultACK
	}
}
