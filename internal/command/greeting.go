package command

import (
	"errors"
	"strings"
	"time"

	"github.com/sourcegraph/conc/panics"
)

// Greeting simulates a slow background computation: it sleeps for Delay and
// then greets the input. It stands in for real work such as a request/reply
// round trip over a message broker.
type Greeting struct {
	// Input is the name to greet. Leading and trailing whitespace is trimmed.
	Input string

	// Delay is how long the simulated work takes. Zero or negative runs
	// immediately.
	Delay time.Duration
}

// Execute runs the greeting on its own goroutine. An empty input fails;
// a panic in the work is recovered and reported through onFailure.
func (g Greeting) Execute(onSuccess func(string), onFailure func(error)) {
	go func() {
		var result string
		var err error

		r := panics.Try(func() {
			result, err = g.run()
		})
		if r != nil {
			onFailure(r.AsError())
			return
		}
		if err != nil {
			onFailure(err)
			return
		}
		onSuccess(result)
	}()
}

func (g Greeting) run() (string, error) {
	if g.Delay > 0 {
		time.Sleep(g.Delay)
	}

	name := strings.TrimSpace(g.Input)
	if name == "" {
		return "", errors.New("nothing to greet: empty input")
	}
	return "Hello " + name, nil
}
