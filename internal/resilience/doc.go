// Package resilience groups the fault tolerance helpers used by the sync worker.
//
// Downloads of the sanctions lists go through a circuit breaker and an optional
// retry loop; table loads go through a database circuit breaker so a scheduled
// worker stops hammering an unavailable database.
//
//	cb := circuitbreaker.New(circuitbreaker.DownloadConfig())
//	err := retry.WithBackoff(ctx, retry.DownloadConfig(1), func() error {
//	    _, err := cb.Execute(func() (interface{}, error) { return download() })
//	    return err
//	})
package resilience
