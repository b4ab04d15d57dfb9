// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrNotStarted = errors.New("worker: job not started")

type Worker[Job any] func(context.Context, Job)

// Run starts size workers that pull from jobs and blocks until jobs is
// closed and drained or ctx is done.
//
// The caller must ensure that jobs eventually gets closed or ctx cancelled.
// A panicking job is dropped; its worker keeps running.
func Run[Job any](ctx context.Context, size int, jobs <-chan Job, w Worker[Job]) {
	if size <= 0 {
		size = 1
	}
	var wg sync.WaitGroup
	for range size {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-jobs:
					if !ok {
						return
					}
					runJob(ctx, job, w)
				}
			}
		})
	}
	wg.Wait()
}

func runJob[Job any](ctx context.Context, job Job, w Worker[Job]) {
	// wg.Go requires that func does not panic
	defer func() { _ = recover() }()
	w(ctx, job)
}

type Result[Out any] struct {
	Value Out
	Err   error
}

// Map calls fn for every input with at most size calls in flight and
// returns the results in input order. Inputs that were not started before
// ctx was done carry ctx's error.
func Map[In, Out any](ctx context.Context, size int, inputs []In, fn func(context.Context, In) (Out, error)) []Result[Out] {
	results := make([]Result[Out], len(inputs))
	done := make([]bool, len(inputs))

	jobs := make(chan int, len(inputs))
	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	Run(ctx, size, jobs, func(ctx context.Context, i int) {
		defer func() {
			if r := recover(); r != nil {
				results[i].Err = fmt.Errorf("worker: panic: %v", r)
			}
			done[i] = true
		}()
		results[i].Value, results[i].Err = fn(ctx, inputs[i])
	})

	for i := range results {
		if done[i] {
			continue
		}
		results[i].Err = ctx.Err()
		if results[i].Err == nil {
			results[i].Err = ErrNotStarted
		}
	}
	return results
}
