// Package sdk provides a typed Go client for the taskforce backend service.
//
// The client wraps the two decomposition endpoints with one method each and
// bounds every call with a fortify timeout. Failures are reported as
// *ServerError when the backend answered with a JSON error body, or as
// *TransportError when no usable response arrived.
//
// Usage:
//
//	c := sdk.NewClient("http://localhost:8000")
//	subtasks, err := c.GetSubtasks(ctx, "Plan a birthday party")
//	if err != nil {
//		var se *sdk.ServerError
//		if errors.As(err, &se) {
//			fmt.Println(se.Msg)
//		}
//	}
package sdk
