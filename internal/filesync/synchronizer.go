package filesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/mitchellh/copystructure"

	"github.com/hupe1980/cfgsync/internal/cell"
	"github.com/hupe1980/cfgsync/internal/codec"
)

// Synchronizer keeps a typed value of T in step with the raw text of a File.
type Synchronizer[T any] struct {
	file   *File
	codec  codec.Codec
	flags  *Flags
	logger *slog.Logger

	typed *cell.Cell[Result[T]]

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New reads the file once to seed the typed value and starts the
// deserializer and serializer. Content that does not parse yields an
// invalid result holding the zero value of T. A nil codec is chosen from
// the file extension.
func New[T any](file *File, c codec.Codec, opts ...Option) (*Synchronizer[T], error) {
	if file == nil {
		return nil, errors.New("nil file handler")
	}

	if file.stopped() {
		return nil, ErrStopped
	}

	if c == nil {
		c = codec.ForPath(file.Path())
	}

	o := newOptions(append([]Option{WithLogger(file.logger)}, opts...))

	data, err := os.ReadFile(file.Path())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file.Path(), err)
	}

	var initial Result[T]

	v, err := decode[T](c, data)
	if err != nil {
		var zero T
		initial = Invalid(zero, err.Error())
	} else {
		initial = Valid(v)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Synchronizer[T]{
		file:   file,
		codec:  c,
		flags:  file.flags,
		logger: o.logger.With(slog.String("format", c.Name())),
		typed:  cell.New(initial, cell.WithClone(cloneResult[T])),
		ctx:    ctx,
		cancel: cancel,
	}

	rawRx := file.raw.Subscribe()
	typedRx := s.typed.Subscribe()

	s.wg.Add(2)

	go s.runDeserializer(rawRx)
	go s.runSerializer(typedRx)

	return s, nil
}

// Current returns the latest typed result.
func (s *Synchronizer[T]) Current() Result[T] {
	return s.typed.Get()
}

// Subscribe returns a receiver of typed results. Its first Next returns the
// current result immediately. Returned values must be treated as read-only.
func (s *Synchronizer[T]) Subscribe() *cell.Receiver[Result[T]] {
	rx := s.typed.Subscribe()
	rx.MarkChanged()

	return rx
}

// Publisher returns a handle for application-driven edits.
func (s *Synchronizer[T]) Publisher() *Publisher[T] {
	return &Publisher[T]{typed: s.typed}
}

// Update is shorthand for s.Publisher().Update(fn).
func (s *Synchronizer[T]) Update(fn func(v *T)) {
	s.Publisher().Update(fn)
}

// File returns the underlying file handler.
func (s *Synchronizer[T]) File() *File {
	return s.file
}

// Stop halts the deserializer and serializer and closes the typed channel.
// It does not stop the File.
func (s *Synchronizer[T]) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.typed.Close()
		s.wg.Wait()
	})
}

// runDeserializer parses every raw text revision read from disk.
func (s *Synchronizer[T]) runDeserializer(rx *cell.Receiver[RawText]) {
	defer s.wg.Done()

	for {
		raw, err := rx.Next(s.ctx)
		if err != nil {
			return
		}

		// Text produced by the serializer already is the current value.
		if raw.Origin != OriginDisk {
			continue
		}

		s.flags.armFromDisk()

		v, err := decode[T](s.codec, []byte(raw.Text))
		if err != nil {
			msg := err.Error()
			s.logger.Warn("parsing file failed, keeping last valid value", slog.String("error", msg))
			s.typed.Modify(func(r *Result[T]) {
				*r = Invalid(r.Value, msg)
			})

			continue
		}

		s.logger.Debug("loaded external change")
		s.typed.Set(Valid(v))
	}
}

// runSerializer mirrors application edits back to raw text.
func (s *Synchronizer[T]) runSerializer(rx *cell.Receiver[Result[T]]) {
	defer s.wg.Done()

	for {
		res, err := rx.Next(s.ctx)
		if err != nil {
			return
		}

		if s.flags.consumeFromDisk() {
			continue
		}

		data, err := s.codec.Marshal(res.Value)
		if err != nil {
			panic(fmt.Sprintf("filesync: in-memory value cannot be encoded as %s: %v", s.codec.Name(), err))
		}

		if s.file.publish(string(data), OriginMemory) {
			s.logger.Debug("published in-memory change")
		}
	}
}

// Publisher applies application-driven edits to the typed value. It is safe
// for concurrent use and may be shared freely.
type Publisher[T any] struct {
	typed *cell.Cell[Result[T]]
}

// Update mutates a copy of the current value in place. The edit clears any
// pending parse error and is written back to the file.
func (p *Publisher[T]) Update(fn func(v *T)) {
	p.typed.Modify(func(r *Result[T]) {
		fn(&r.Value)
		r.Message = ""
	})
}

// Replace swaps in a new value.
func (p *Publisher[T]) Replace(v T) {
	p.Update(func(cur *T) { *cur = v })
}

// Current returns the current value regardless of validity.
func (p *Publisher[T]) Current() T {
	return p.typed.Get().Value
}

// decode parses data into a fresh value so maps never merge with stale
// content.
func decode[T any](c codec.Codec, data []byte) (T, error) {
	var v T
	if err := c.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, err
	}

	return v, nil
}

// cloneResult deep-copies the value so Modify never mutates a result that
// has already been handed out.
func cloneResult[T any](r Result[T]) Result[T] {
	c, err := copystructure.Copy(r.Value)
	if err != nil {
		panic(fmt.Sprintf("filesync: copying value: %v", err))
	}

	v, _ := c.(T)

	return Result[T]{Value: v, Message: r.Message}
}
