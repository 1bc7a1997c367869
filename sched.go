// Copyright 2024 The svgdom Authors. All rights reserved.
//
// Shared background scheduler for body parses. Workers start lazily on
// the first scheduled task and are shared by every loader in the
// process; one task owns one document parse from start to finish.
package svgdom

import (
	"runtime"
	"sync"
)

var sched struct {
	once  sync.Once
	tasks chan func()
}

func startScheduler() {
	n := runtime.GOMAXPROCS(0)
	if n < 2 {
		n = 2
	}
	sched.tasks = make(chan func(), n)
	for i := 0; i < n; i++ {
		go func() {
			for task := range sched.tasks {
				task()
			}
		}()
	}
}

// schedule hands a task to the shared workers. Never blocks the
// caller beyond queue admission.
func schedule(task func()) {
	sched.once.Do(startScheduler)
	sched.tasks <- task
}
