// Package httputil provides the HTTP plumbing shared by the backend API
// client.
//
//   - [Retry]: retry with exponential backoff for transient failures
//   - [JSONCache]: JSON values over any [cache.Cache] backend
//
// # Retry
//
// Only errors wrapped with [Retryable] are retried; everything else is
// returned on the first attempt:
//
//	err := httputil.Retry(ctx, 3, 200*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// # Caching
//
//	c := httputil.NewJSONCache(backend, 5*time.Minute).Namespace("api:")
//	var customers []model.Customer
//	if ok, _ := c.Get(ctx, "customers", &customers); !ok {
//	    customers = fetch()
//	    _ = c.Set(ctx, "customers", customers)
//	}
package httputil
