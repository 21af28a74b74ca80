// Package backend is the client for the external backend service that owns
// all persistent state: authentication, the relational table store, and
// object storage.
//
// A single long-lived *Client is built once from configuration and handed to
// the rest of the application. It exposes:
//
//   - Client.Auth: password sign-in/sign-up/sign-out, session resolution,
//     automatic access-token refresh, and an auth-state change stream that
//     consumers subscribe to.
//   - Client.Table(name): inserts and filtered, ordered selects against the
//     service's table API.
//
// Object storage lives in the backend/storage subpackage so the S3-compatible
// and REST drivers can be swapped behind one interface.
//
// Every failure is classified: transport errors carry common.KindNetwork,
// service-reported errors carry common.KindBackend with the service's own
// message.
package backend
