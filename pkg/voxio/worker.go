package voxio

import (
	"log/slog"
	"time"
)

// trimState tracks the encoder-delay/trailing-padding accounting for the
// track currently being decoded. Delay is applied at the true start of a
// track; after a seek, only the part of the delay past the landing point is.
// Padding is trimmed by holding back the tail of decoded audio until the
// decoder reports end of stream, at which point whatever is held back is
// the padding and is discarded rather than emitted.
type trimState struct {
	remainingDelay uint64
	paddingFrames  uint64
	heldBack       []float32
}

func newTrimState(delay, padding uint64) *trimState {
	return &trimState{remainingDelay: delay, paddingFrames: padding}
}

// apply discards delay frames from the front of raw, folds the rest into the
// holdback tail, and returns whatever has aged out of the holdback window
// and is therefore safe to emit.
func (t *trimState) apply(raw []float32, channels int) []float32 {
	if t.remainingDelay > 0 {
		frames := uint64(len(raw)) / uint64(channels)
		skip := min(t.remainingDelay, frames)
		raw = raw[skip*uint64(channels):]
		t.remainingDelay -= skip
	}
	if t.paddingFrames == 0 {
		return raw
	}

	combined := append(t.heldBack, raw...)
	combinedFrames := uint64(len(combined)) / uint64(channels)
	if combinedFrames <= t.paddingFrames {
		t.heldBack = combined
		return nil
	}
	emitFrames := combinedFrames - t.paddingFrames
	emit := combined[:emitFrames*uint64(channels)]
	t.heldBack = append([]float32(nil), combined[emitFrames*uint64(channels):]...)
	return emit
}

// flush discards whatever remains held back; it is the trailing padding.
func (t *trimState) flush() {
	t.heldBack = nil
}

// queuedTrack is a track requested via set_next, decoded gaplessly once the
// current track ends.
type queuedTrack struct {
	path string
}

// worker owns the decoder, resampler and trim accounting for whichever
// track is currently playing. It is the sole producer into the ring and the
// only goroutine that ever touches trackDecoder or resampler state.
type worker struct {
	cmds           <-chan command
	ring           *sampleRing
	state          *sharedState
	outputRate     int
	outputChannels int
	log            *slog.Logger

	dec         trackDecoder
	res         *resampler
	trim        *trimState
	next        *queuedTrack
	lastInRate  int
	lastInChans int
	stopped     bool
}

func newWorker(cmds <-chan command, ring *sampleRing, state *sharedState, outputRate, outputChannels int, log *slog.Logger) *worker {
	return &worker{
		cmds:           cmds,
		ring:           ring,
		state:          state,
		outputRate:     outputRate,
		outputChannels: outputChannels,
		log:            log,
	}
}

// run is the worker's main loop: block for a command, coalesce whatever
// else is already queued behind it, act, then decode-and-push until the
// track ends with nothing queued or a new command needs handling.
func (w *worker) run() {
	var pending []command
	for {
		if w.stopped {
			return
		}
		cmd, ok := <-w.cmds
		if !ok {
			return
		}
		pending = coalesce(pending, cmd)
		pending = w.drainAvailable(pending)

		for _, c := range pending {
			w.handle(c)
			if w.stopped {
				return
			}
		}
		pending = pending[:0]

		w.pumpUntilFullOrCommand()
	}
}

// drainAvailable folds in every command already sitting in the channel
// without blocking, so a burst sent by the Handle collapses before the
// worker acts on any of it.
func (w *worker) drainAvailable(pending []command) []command {
	for {
		select {
		case c, ok := <-w.cmds:
			if !ok {
				return pending
			}
			pending = coalesce(pending, c)
		default:
			return pending
		}
	}
}

func (w *worker) handle(c command) {
	switch cmd := c.(type) {
	case cmdPlay:
		w.startTrack(cmd.path)
	case cmdQueueNext:
		w.next = &queuedTrack{path: cmd.path}
	case cmdSeek:
		w.handleSeek(cmd)
	case cmdPause:
		w.state.setPaused(true)
	case cmdResume:
		w.state.setPaused(false)
	case cmdTogglePlayback:
		w.state.togglePlayback()
	case cmdStop:
		w.stopPlayback()
	case cmdShutdown:
		w.stopPlayback()
		w.stopped = true
	}
}

func (w *worker) startTrack(path string) {
	w.closeCurrent()

	dec, err := openTrackDecoder(path)
	if err != nil {
		w.log.Error("failed to open track", "path", path, "error", err)
		w.state.setActive(false)
		return
	}

	if err := w.adoptDecoder(dec); err != nil {
		w.log.Error("failed to build resampler", "path", path, "error", err)
		dec.close()
		w.dec = nil
		w.state.setActive(false)
		return
	}
	w.state.resetSamples()
	w.state.setPaused(false)
	w.state.setActive(true)
}

// adoptDecoder installs dec as the current track's decoder, builds or reuses
// a resampler for it, and publishes the track's duration with encoder delay
// and trailing padding excluded, per the playable-frames definition.
func (w *worker) adoptDecoder(dec trackDecoder) error {
	w.dec = dec
	w.trim = newTrimState(dec.encoderDelayFrames(), dec.trailingPaddingFrames())
	if err := w.setupResampler(dec.sampleRate(), dec.channelCount()); err != nil {
		return err
	}

	if frames, ok := dec.totalFrames(); ok {
		playable := int64(frames) - int64(dec.encoderDelayFrames()) - int64(dec.trailingPaddingFrames())
		if playable < 0 {
			playable = 0
		}
		w.state.setDurationSecs(float64(playable) / float64(dec.sampleRate()))
	} else {
		w.state.setDurationSecs(0)
	}
	return nil
}

// setupResampler reuses the existing resampler when the incoming stream's
// input rate and channel count match the previous track's, so a gapless
// transition never drops or re-primes resampler state unnecessarily.
func (w *worker) setupResampler(inRate, inChans int) error {
	if w.res != nil && inRate == w.lastInRate && inChans == w.lastInChans {
		return nil
	}
	res, err := newResampler(inRate, w.outputRate, inChans)
	if err != nil {
		return err
	}
	w.res = res
	w.lastInRate = inRate
	w.lastInChans = inChans
	return nil
}

func (w *worker) closeCurrent() {
	if w.dec != nil {
		w.dec.close()
		w.dec = nil
	}
	w.res = nil
	w.trim = nil
}

func (w *worker) stopPlayback() {
	w.closeCurrent()
	w.next = nil
	w.state.setActive(false)
	w.state.setPaused(false)
	w.state.resetSamples()
}

func (w *worker) handleSeek(cmd cmdSeek) {
	if w.dec == nil {
		return
	}
	w.state.startSeek()
	gen := w.state.seekGen()

	target := cmd.seconds
	if !cmd.absolute {
		target = w.state.positionSecs(w.outputRate) + cmd.seconds
	}
	if target < 0 {
		target = 0
	}

	actual, err := w.dec.seek(target)
	if err != nil {
		w.log.Error("seek failed", "error", err)
		w.state.finishSeek()
		return
	}

	// A landing point inside the encoder delay still has the rest of the
	// delay discarded from the packets that follow.
	landed := uint64(actual * float64(w.dec.sampleRate()))
	var delay uint64
	if d := w.dec.encoderDelayFrames(); landed < d {
		delay = d - landed
	}
	w.trim = newTrimState(delay, w.dec.trailingPaddingFrames())
	if w.res != nil {
		// The SoXR binding has no in-place reset, so a seek rebuilds the
		// resampler from scratch to clear its filter memory rather than
		// carrying stale history across the jump.
		fresh, err := newResampler(w.lastInRate, w.outputRate, w.lastInChans)
		if err != nil {
			w.log.Error("failed to rebuild resampler after seek", "error", err)
		} else {
			w.res = fresh
		}
	}
	w.state.setSamples(uint64(actual * float64(w.outputRate)))

	w.prefillAfterSeek(gen)

	if w.state.seekGen() == gen {
		w.state.finishSeek()
	}
}

// prefillAfterSeek decodes and pushes roughly SeekPrefillMS worth of output
// audio so the callback has something ready the instant it stops gating on
// is_seeking, aborting early if a newer seek has superseded this one.
func (w *worker) prefillAfterSeek(gen uint64) {
	target := uint64(SeekPrefillMS) * uint64(w.outputRate) * uint64(w.outputChannels) / 1000
	var produced uint64
	for produced < target {
		if w.state.seekGen() != gen {
			return
		}
		out, done := w.decodeOne()
		if len(out) > 0 {
			w.pushAll(out)
			produced += uint64(len(out))
		}
		if done {
			return
		}
	}
}

// pumpUntilFullOrCommand decodes and pushes samples into the ring until
// either the track ends and nothing is queued, or a new command is waiting
// in the channel (left there for run to receive). While the ring has no room
// it sleeps briefly and retries.
func (w *worker) pumpUntilFullOrCommand() {
	for {
		if len(w.cmds) > 0 {
			return
		}

		if w.dec == nil {
			return
		}
		if w.ring.availableWrite() == 0 {
			time.Sleep(ringFullSpinSleep)
			continue
		}

		out, done := w.decodeOne()
		if len(out) > 0 {
			w.pushAll(out)
		}
		if done {
			w.onTrackEnd()
		}
	}
}

// decodeOne decodes, trims and resamples a single packet's worth of audio
// and remaps it to the output channel layout. done is true once the
// decoder has reached end of stream and all held-back padding has drained.
func (w *worker) decodeOne() (out []float32, done bool) {
	raw, status, err := w.dec.nextPacket()
	if err != nil {
		w.log.Error("decode error", "error", err)
		return nil, true
	}
	if status == packetRetry {
		return nil, false
	}
	eof := status == packetEOF
	if eof {
		// Whatever is still held back once the stream ends is the padding.
		defer w.trim.flush()
	}

	trimmed := w.trim.apply(raw, w.dec.channelCount())
	if len(trimmed) == 0 {
		return nil, eof
	}

	resampled := trimmed
	if w.res != nil {
		produced, err := w.res.process(trimmed)
		if err != nil {
			w.log.Error("resampler error", "error", err)
			return nil, true
		}
		resampled = produced
	}
	if len(resampled) == 0 {
		return nil, eof
	}

	return remapChannels(resampled, w.dec.channelCount(), w.outputChannels), eof
}

// flushResamplerTail finalizes the current resampler (if any), pushing
// whatever output its filter memory was still holding.
func (w *worker) flushResamplerTail() {
	if w.res == nil {
		return
	}
	tail, err := w.res.flush()
	if err != nil {
		w.log.Error("resampler flush failed", "error", err)
		return
	}
	if len(tail) > 0 {
		w.pushAll(remapChannels(tail, w.lastInChans, w.outputChannels))
	}
}

// onTrackEnd signals the one-shot track-ended latch and transitions into a
// queued-next track when one is waiting. When the queued track's input rate
// and channel count match the one that just ended, the resampler carries
// straight over with no flush so its filter memory spans the seam; any other
// transition flushes the old resampler's trailing output first.
func (w *worker) onTrackEnd() {
	w.state.signalTrackEnded()

	if w.next == nil {
		w.flushResamplerTail()
		w.closeCurrent()
		w.state.setActive(false)
		return
	}

	path := w.next.path
	w.next = nil

	next, err := openTrackDecoder(path)
	if err != nil {
		w.log.Error("failed to open queued track", "path", path, "error", err)
		w.flushResamplerTail()
		w.closeCurrent()
		w.state.setActive(false)
		return
	}

	gapless := w.res != nil && next.sampleRate() == w.lastInRate && next.channelCount() == w.lastInChans
	if !gapless {
		w.flushResamplerTail()
	}
	if w.dec != nil {
		w.dec.close()
	}
	w.dec = nil
	w.trim = nil
	if !gapless {
		w.res = nil
	}

	if err := w.adoptDecoder(next); err != nil {
		w.log.Error("failed to build resampler", "path", path, "error", err)
		next.close()
		w.dec = nil
		w.state.setActive(false)
		return
	}
	w.state.resetSamples()
	w.state.setPaused(false)
	w.state.setActive(true)
}

// pushAll blocks (via a short spin/sleep loop) until every sample has been
// handed to the ring. The sample tap is fed only by the audio callback, at
// actual output time, not here at production time — a sample produced into
// the ring may still be discarded (stop, a superseding seek) before it is
// ever played, and the tap must reflect what was heard.
func (w *worker) pushAll(samples []float32) {
	for len(samples) > 0 {
		n := w.ring.push(samples)
		samples = samples[n:]
		if len(samples) > 0 {
			time.Sleep(ringFullSpinSleep)
		}
	}
}

// remapChannels converts an interleaved buffer of inChans channels per
// frame to outChans: channels present in the source are copied directly, a
// mono source is duplicated across every output channel, and any channel
// beyond what the source provides is filled with silence.
func remapChannels(in []float32, inChans, outChans int) []float32 {
	if inChans == outChans {
		return in
	}
	frames := len(in) / inChans
	out := make([]float32, frames*outChans)
	for f := 0; f < frames; f++ {
		src := in[f*inChans : f*inChans+inChans]
		dst := out[f*outChans : f*outChans+outChans]
		for c := 0; c < outChans; c++ {
			switch {
			case c < inChans:
				dst[c] = src[c]
			case inChans == 1:
				dst[c] = src[0]
			default:
				dst[c] = 0
			}
		}
	}
	return out
}
