package store

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"
)

// store/RateLimiter.java

/*
Rate limits IO. Typically implementations are shared across multiple
IndexOutputs, for example all outputs written by one flush. Those
outputs call Pause() whenever they want to write bytes.
*/
type RateLimiter interface {
	// Sets an updated mb per second rate limit.
	SetMbPerSec(mbPerSec float64)
	// The current mb per second rate limit.
	MbPerSec() float64
	// Pause, if necessary, to keep the IO rate at or below the target.
	// Safe for concurrent use.
	Pause(bytes int) error
}

/* A RateLimiter backed by a token bucket refilled at mbPerSec. */
type SimpleRateLimiter struct {
	limiter  *rate.Limiter
	mbPerSec float64
}

// mbPerSec is the MB/sec max IO rate
func NewSimpleRateLimiter(mbPerSec float64) *SimpleRateLimiter {
	ans := &SimpleRateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	ans.SetMbPerSec(mbPerSec)
	return ans
}

func (srl *SimpleRateLimiter) SetMbPerSec(mbPerSec float64) {
	srl.mbPerSec = mbPerSec
	bytesPerSec := mbPerSec * 1024 * 1024
	if mbPerSec <= 0 || bytesPerSec >= math.MaxInt32 {
		srl.limiter.SetLimit(rate.Inf)
		return
	}
	srl.limiter.SetLimit(rate.Limit(bytesPerSec))
	// allow bursts of a tenth of a second
	burst := int(bytesPerSec / 10)
	if burst < DEFAULT_BUFFER_SIZE {
		burst = DEFAULT_BUFFER_SIZE
	}
	srl.limiter.SetBurst(burst)
}

func (srl *SimpleRateLimiter) MbPerSec() float64 {
	return srl.mbPerSec
}

func (srl *SimpleRateLimiter) Pause(bytes int) error {
	burst := srl.limiter.Burst()
	for bytes > 0 {
		n := bytes
		if srl.limiter.Limit() != rate.Inf && n > burst {
			n = burst
		}
		if err := srl.limiter.WaitN(context.Background(), n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// store/RateLimitedDirectoryWrapper.java

/*
A Directory wrapper that allows IndexOutput rate limiting using IO
context specific rate limiters.
*/
type RateLimitedDirectoryWrapper struct {
	Directory
	contextRateLimiters map[IOContextType]RateLimiter
}

func NewRateLimitedDirectoryWrapper(wrapped Directory) *RateLimitedDirectoryWrapper {
	return &RateLimitedDirectoryWrapper{
		Directory:           wrapped,
		contextRateLimiters: make(map[IOContextType]RateLimiter),
	}
}

func (w *RateLimitedDirectoryWrapper) CreateOutput(name string, ctx IOContext) (IndexOutput, error) {
	output, err := w.Directory.CreateOutput(name, ctx)
	if err != nil {
		return nil, err
	}
	if limiter, ok := w.contextRateLimiters[ctx.context]; ok {
		output = newRateLimitedIndexOutput(limiter, output)
	}
	return output, nil
}

func (w *RateLimitedDirectoryWrapper) String() string {
	return fmt.Sprintf("RateLimitedDirectoryWrapper(%v)", w.Directory)
}

/*
Sets the maximum (approx) MB/sec allowed by all write IO performed by
IndexOutput created with the given context. Pass non-positive value
to have no limit.

NOTE: For already created IndexOutput instances there is no guarantee
this new rate will apply to them; it will only be guaranteed to apply
for new created IndexOutput instances. Not safe to call concurrently
with CreateOutput().
*/
func (w *RateLimitedDirectoryWrapper) SetMaxWriteMBPerSec(mbPerSec float64, context IOContextType) {
	limiter, ok := w.contextRateLimiters[context]
	switch {
	case mbPerSec <= 0:
		delete(w.contextRateLimiters, context)
	case ok:
		limiter.SetMbPerSec(mbPerSec)
	default:
		w.contextRateLimiters[context] = NewSimpleRateLimiter(mbPerSec)
	}
}

/*
Sets the rate limiter to be used to limit (approx) MB/sec allowed by
all IO performed with the given context. Sharing one instance across
several directories limits IO across them globally.
*/
func (w *RateLimitedDirectoryWrapper) SetRateLimiter(limiter RateLimiter, context IOContextType) {
	if limiter == nil {
		delete(w.contextRateLimiters, context)
		return
	}
	w.contextRateLimiters[context] = limiter
}

func (w *RateLimitedDirectoryWrapper) MaxWriteMBPerSec(context IOContextType) float64 {
	if limiter, ok := w.contextRateLimiters[context]; ok {
		return limiter.MbPerSec()
	}
	return 0
}

// store/RateLimitedIndexOutput.java

/* A rate limiting IndexOutput */
type RateLimitedIndexOutput struct {
	*IndexOutputImpl
	delegate    IndexOutput
	rateLimiter RateLimiter
}

func newRateLimitedIndexOutput(rateLimiter RateLimiter, delegate IndexOutput) *RateLimitedIndexOutput {
	ans := &RateLimitedIndexOutput{delegate: delegate, rateLimiter: rateLimiter}
	ans.IndexOutputImpl = NewIndexOutput(ans)
	return ans
}

func (out *RateLimitedIndexOutput) WriteByte(b byte) error {
	if err := out.rateLimiter.Pause(1); err != nil {
		return err
	}
	return out.delegate.WriteByte(b)
}

func (out *RateLimitedIndexOutput) WriteBytes(buf []byte) error {
	if err := out.rateLimiter.Pause(len(buf)); err != nil {
		return err
	}
	return out.delegate.WriteBytes(buf)
}

func (out *RateLimitedIndexOutput) FilePointer() int64 { return out.delegate.FilePointer() }
func (out *RateLimitedIndexOutput) Checksum() int64    { return out.delegate.Checksum() }
func (out *RateLimitedIndexOutput) Close() error       { return out.delegate.Close() }
func (out *RateLimitedIndexOutput) Abort() error       { return out.delegate.Abort() }
