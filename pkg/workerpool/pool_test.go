// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsEveryTask(t *testing.T) {
	p := New(3)
	defer p.Shutdown()

	var count atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		require.NoError(t, p.Submit(context.Background(), func() {
			defer wg.Done()
			count.Add(1)
		}))
	}
	wg.Wait()
	assert.Equal(t, int32(20), count.Load())
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const size = 2
	p := New(size)
	defer p.Shutdown()

	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		require.NoError(t, p.Submit(context.Background(), func() {
			defer wg.Done()
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
		}))
	}
	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(size))
}

func TestPool_SurvivesPanics(t *testing.T) {
	p := New(1)
	defer p.Shutdown()

	require.NoError(t, p.Submit(context.Background(), func() { panic("boom") }))

	done := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive the panic")
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := New(1)
	p.Shutdown()
	p.Shutdown()

	err := p.Submit(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPool_SubmitHonoursContext(t *testing.T) {
	p := New(1)
	defer p.Shutdown()

	release := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), func() { <-release }))
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Submit(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPool_ShutdownWaitsForRunningTasks(t *testing.T) {
	p := New(2)
	var finished atomic.Bool
	require.NoError(t, p.Submit(context.Background(), func() {
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	}))

	p.Shutdown()
	assert.True(t, finished.Load())
}

func TestNew_MinimumSize(t *testing.T) {
	p := New(0)
	defer p.Shutdown()
	assert.Equal(t, 1, p.Size())
}
