// Package jobs runs the scheduled realm and owner refreshes.
//
// Each job wraps one refresh operation of the sync service and runs it on
// a fixed interval until stopped:
//
//	realms := jobs.NewRealmSyncJob(syncService, 6*time.Hour)
//	realms.Start()
//	defer realms.Stop()
//
// A tick that finds a refresh already running (for example one triggered
// over HTTP) is skipped rather than queued. Errors are logged and the job
// keeps its schedule.
package jobs
