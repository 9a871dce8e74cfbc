// Package api is a client for the surface treatment plant REST backend.
//
// [Client.Do] sends one JSON request and decodes the JSON response. Every
// request carries an X-Request-ID header. Idempotent requests are retried
// with exponential backoff on network errors and 5xx responses. A failed
// request becomes an *errors.Error whose message is the backend's "detail"
// field, or "HTTP {code}: {status}" when the body has none, and is also
// reported to the configured [Alerter] together with a retry action.
//
// Resource services wrap the endpoints:
//
//	c, err := api.New("http://localhost:8000", api.WithLogger(logger))
//	customers, err := c.Customers.List(ctx)
//	plants, err := c.Customers.Plants(ctx, customers[0].ID)
//	tanks, err := c.Lines.Tanks(ctx, lineID)
//
// GET responses can be cached with [WithCache].
package api
