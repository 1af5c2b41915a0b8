// Package session remembers which repositories of a sheet were prepared.
//
// Preparing clones and checks out repositories once; later invocations
// (status, run, award, report) need the resulting contexts without
// touching the network again. They are stored in session.json inside the
// evaluations directory of the sheet, keyed by the zero-padded index:
//
//	{
//	  "title": "Assignment 1",
//	  "template": "git@example.com:course/student-{{number}}.git",
//	  "current": 3,
//	  "repositories": {
//	    "003": {
//	      "index": 3,
//	      "repositoryUrl": "git@example.com:course/student-003.git",
//	      "repositoryPath": "/grading/repos/003",
//	      "checkedOutReference": "1a2b3c4d...",
//	      "checkoutStrategy": "TAG:final",
//	      ...
//	    }
//	  }
//	}
//
// # Concurrency
//
// Use [Update] for read-modify-write cycles. It holds an exclusive lock on
// .session.lock for the duration.
//
// # Entry Lifecycle
//
// Preparing an index again replaces its entry. Entries whose repository
// directory disappeared are marked via RemovedAt by [Session.Sync] and are
// revived when the directory reappears.
package session
