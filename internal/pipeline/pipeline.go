package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/roach88/typetrace/internal/classify"
	"github.com/roach88/typetrace/internal/record"
	"github.com/roach88/typetrace/internal/report"
	"github.com/roach88/typetrace/internal/sink"
	"github.com/roach88/typetrace/internal/source"
)

// Index receives every normalized record of a run. store.RunIndex implements it.
type Index interface {
	Begin(ctx context.Context, input, output, mode string) error
	Add(ctx context.Context, rec record.Record) error
	Finish(ctx context.Context, sum report.Summary, runErr error) error
}

// Options configures a run.
type Options struct {
	// Input and Output are file paths. Their extensions select the codec.
	Input  string
	Output string

	// Mode selects line or array framing for the input.
	Mode source.Mode

	// Engine classifies records. Defaults to the built-in rule table.
	Engine *classify.Engine

	// Reporter receives progress and diagnostics. Defaults to report.Discard.
	Reporter report.Reporter

	// Index, if set, is fed every written record.
	Index Index

	// Now is the clock used to time the run. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Engine == nil {
		o.Engine = classify.New()
	}
	if o.Reporter == nil {
		o.Reporter = report.Discard{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Run normalizes opts.Input into opts.Output.
//
// The returned Summary is always populated, including after a failure, and
// is the same value handed to Reporter.Finish.
func Run(ctx context.Context, opts Options) (sum report.Summary, err error) {
	opts = opts.withDefaults()
	rep := opts.Reporter

	start := opts.Now()
	sum.Kinds = map[string]int64{}
	rep.Start()

	indexed := false
	defer func() {
		sum.Duration = opts.Now().Sub(start)
		if indexed {
			if ierr := opts.Index.Finish(context.WithoutCancel(ctx), sum, err); ierr != nil {
				err = errors.Join(err, ierr)
			}
		}
		rep.Finish(sum, err)
	}()

	if opts.Index != nil {
		if err := opts.Index.Begin(ctx, opts.Input, opts.Output, opts.Mode.String()); err != nil {
			return sum, err
		}
		indexed = true
	}

	src, err := source.Open(opts.Input, opts.Mode, rep)
	if err != nil {
		return sum, err
	}
	defer func() {
		st := src.Stats()
		sum.Dropped, sum.Truncated = st.Dropped, st.Truncated
		if cerr := src.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close input: %w", cerr)
		}
	}()

	out, err := sink.Create(opts.Output)
	if err != nil {
		return sum, err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	err = pump(ctx, opts, src, out, &sum)
	return sum, err
}

// pump moves records from src to out until the input is exhausted, a
// transport fault occurs, or ctx is cancelled.
func pump(ctx context.Context, opts Options, src source.Source, out *sink.Writer, sum *report.Summary) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		norm := opts.Engine.Normalize(raw)
		if err := out.Write(norm); err != nil {
			return err
		}
		// Finished records reach the file before the next one is read.
		if err := out.Flush(); err != nil {
			return err
		}
		sum.Items = out.Count()
		if kind, ok := norm.StringField("kind"); ok {
			sum.Kinds[kind]++
		}

		if opts.Index != nil {
			if err := opts.Index.Add(ctx, norm); err != nil {
				return err
			}
		}
	}
}
