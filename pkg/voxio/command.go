package voxio

// command is sent from the Handle to the Worker over a bounded channel.
// The worker drains and coalesces pending commands before acting: a burst of
// seeks folds into one target and queued-next replacements collapse to the
// latest path, so a
// burst of calls from the controlling goroutine never makes the worker do
// stale work.
type command interface {
	isCommand()
}

type cmdPlay struct {
	path string
}

func (cmdPlay) isCommand() {}

type cmdQueueNext struct {
	path string
}

func (cmdQueueNext) isCommand() {}

// cmdSeek carries either an absolute position in seconds or a relative
// delta; relative is applied against the worker's own notion of the current
// position at the time it is processed, not at the time it was sent.
type cmdSeek struct {
	absolute bool
	seconds  float64
}

func (cmdSeek) isCommand() {}

type cmdPause struct{}

func (cmdPause) isCommand() {}

type cmdResume struct{}

func (cmdResume) isCommand() {}

type cmdTogglePlayback struct{}

func (cmdTogglePlayback) isCommand() {}

type cmdStop struct{}

func (cmdStop) isCommand() {}

type cmdShutdown struct{}

func (cmdShutdown) isCommand() {}

// coalesce folds a freshly received command into the pending batch,
// collapsing redundant work the way the reference worker's command
// processing loop does. Seeks accumulate rather than replace: an absolute
// seek overrides any earlier pending seek outright, while a relative seek
// adds its delta on top of whatever seek is already pending, so a burst of
// relative nudges lands at their sum instead of only the last one. Any
// non-seek command flushes the accumulated seek ahead of itself, since it
// needs the worker to have already landed there. A new queued-next replaces
// an earlier one, and Stop/Shutdown clear out everything queued before them
// since they make prior commands moot.
func coalesce(pending []command, next command) []command {
	if seek, ok := next.(cmdSeek); ok {
		// Only merge with a seek still sitting at the tail of the batch: any
		// non-seek command queued after an earlier seek must run (and so
		// flush it) before this new seek is considered, matching the
		// reference worker's "a non-seek command flushes the accumulated
		// seek first" rule.
		if len(pending) > 0 {
			if prior, ok := pending[len(pending)-1].(cmdSeek); ok {
				pending[len(pending)-1] = accumulateSeek(prior, seek)
				return pending
			}
		}
		return append(pending, seek)
	}

	switch next.(type) {
	case cmdQueueNext:
		pending = dropType[cmdQueueNext](pending)
	case cmdStop, cmdShutdown:
		return []command{next}
	}
	return append(pending, next)
}

// accumulateSeek folds a newly received seek onto an already-pending one: an
// absolute target overrides the pending seek outright, while a relative
// delta adds on top of it (relative-on-relative and relative-on-absolute
// both land on prior.seconds + seek.seconds).
func accumulateSeek(prior, seek cmdSeek) cmdSeek {
	if seek.absolute {
		return seek
	}
	return cmdSeek{absolute: prior.absolute, seconds: prior.seconds + seek.seconds}
}

func dropType[T command](pending []command) []command {
	out := pending[:0]
	for _, c := range pending {
		if _, ok := c.(T); !ok {
			out = append(out, c)
		}
	}
	return out
}
