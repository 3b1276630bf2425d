// Package jobs provides scheduled background tasks for the fulfillment service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. DispatchRetryJob - Runs every minute to create the delivery jobs that a
// payment notification could not create, for orders that are paid but not
// fully dispatched
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(retryHandler, jobs.DefaultDispatchRetryConfig(), logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules use the six field cron format with seconds. The default
// "0 * * * * *" fires at the start of every minute. A pass that overruns
// its slot makes the next one skip instead of running twice.
//
// # Error Handling
//
// - Failed passes are logged; the next pass picks the same orders up again
// - Cancellation during shutdown is not logged as a failure
// - A failed job start returns an error from StartAll
package jobs
