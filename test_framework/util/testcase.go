package util

import (
	"math"
	"math/rand"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("test")

// --------------------------------------------------------------------
// Knobs read from the environment, once per test binary.
// --------------------------------------------------------------------

// True if and only if tests are run in verbose mode. If this flag is
// false tests are not expected to print any messages.
var VERBOSE = ("true" == or(os.Getenv("tests_verbose"), "false"))

// True if tests should hand a logging InfoStream to the writers.
var INFOSTREAM = ("true" == or(os.Getenv("tests_infostream"), strconv.FormatBool(VERBOSE)))

// A random multiplier which you should use when writing random tests:
// multiply it by the number of iterations to scale your tests (for
// nightly builds).
var RANDOM_MULTIPLIER = func() int {
	n, err := strconv.Atoi(or(os.Getenv("tests_multiplier"), "1"))
	if err != nil {
		panic(err)
	}
	return n
}()

// Whether or not Nightly tests should run
var TEST_NIGHTLY = ("true" == or(os.Getenv("tests_nightly"), "false"))

func or(a, b string) string {
	if len(a) > 0 {
		return a
	}
	return b
}

var (
	seedOnce sync.Once
	seed     int64
)

/*
Returns the seed of this test run. It comes from tests_seed when set,
so a failure can be replayed, else from the clock.
*/
func Seed() int64 {
	seedOnce.Do(func() {
		if s := os.Getenv("tests_seed"); s != "" {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				panic(err)
			}
			seed = n
		} else {
			seed = time.Now().UTC().UnixNano()
		}
		log.Infof("tests_seed=%v", seed)
	})
	return seed
}

/*
Returns a new Random derived from the run seed. It is not safe for
concurrent use; goroutines should each derive their own:

	r := rand.New(rand.NewSource(Random().Int63()))
*/
func Random() *rand.Rand {
	return rand.New(rand.NewSource(Seed()))
}

/* Returns a random int in [start, end]. */
func NextInt(r *rand.Rand, start, end int) int {
	return r.Intn(end-start+1) + start
}

/*
Returns a number of at least i

The actual number returned will be influenced by whether TEST_NIGHTLY
is active and RANDOM_MULTIPLIER, but also with some random fudge.
*/
func AtLeast(r *rand.Rand, i int) int {
	min := i * RANDOM_MULTIPLIER
	if TEST_NIGHTLY {
		min = 2 * min
	}
	max := min + min/2
	return NextInt(r, min, max)
}

/*
Returns true if something should happen rarely,

The actual number returned will be influenced by whether TEST_NIGHTLY
is active and RANDOM_MULTIPLIER
*/
func Rarely(r *rand.Rand) bool {
	p := 1
	if TEST_NIGHTLY {
		p = 10
	}
	p += int(float64(p) * math.Log(float64(RANDOM_MULTIPLIER)))
	if p > 50 {
		p = 50
	}
	return r.Intn(100) >= 100-p
}

func Usually(r *rand.Rand) bool {
	return !Rarely(r)
}

const termChars = "abcdefghijklmnopqrstuvwxyz"

/* Returns a random lower case ASCII term of 1 to maxLength letters. */
func RandomTerm(r *rand.Rand, maxLength int) string {
	buf := make([]byte, NextInt(r, 1, maxLength))
	for i := range buf {
		buf[i] = termChars[r.Intn(len(termChars))]
	}
	return string(buf)
}
