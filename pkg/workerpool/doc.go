// Package workerpool provides a fixed-size task executor with an explicit
// lifecycle.
//
//	pool := workerpool.New(4)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(ctx, func() { reconcile(desc) }); err != nil {
//	    return err
//	}
//
// Submit blocks while every worker is busy. Callers that need to wait for
// their own tasks track them themselves, typically with a sync.WaitGroup.
package workerpool
