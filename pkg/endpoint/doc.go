// Package endpoint implements the "send" message endpoint: an HTTP POST to
// the path "send", resolved against a base URL, carrying a caller supplied
// header set and a raw text body, and answering with the raw response text.
//
// # Usage
//
//	ep, err := endpoint.New("https://fcm.googleapis.com/fcm/")
//	if err != nil {
//	    return err
//	}
//
//	call := ep.SendMessage(ctx, map[string]string{
//	    "Authorization": "key=" + serverKey,
//	    "Content-Type":  "application/json",
//	}, payload)
//
//	resp, err := call.Await(ctx)
//
// SendMessage never fails synchronously. Every outcome, including transport
// failures and non-2xx statuses, is delivered through the returned Call.
// The endpoint performs no retries; callers that want them wrap the call.
//
// # Errors
//
// Transport problems match ErrTransport and are *TransportError values.
// Non-2xx responses match ErrStatus and are *StatusError values; the raw
// response body is still returned alongside the error.
package endpoint
