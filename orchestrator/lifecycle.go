/*
NAME
  lifecycle.go

DESCRIPTION
  lifecycle.go implements the writer goroutine that commits worker
  results to the output stream in encode order, Close's flush/join
  sequence, Cancel's cooperative cancellation flag, and the
  fsnotify-backed preset hot-reload, per spec.md §5.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package orchestrator

import (
	"bufio"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/tsvm/tav/container"
	"github.com/tsvm/tav/internal/logging"
	"github.com/tsvm/tav/orchestrator/config"
)

// writePackets drains orderCh strictly in submission order: it blocks
// on each ticket's result channel in turn, so a GOP that finishes
// encoding early still waits behind any earlier GOP still in flight,
// per spec.md §5's "output packets appear in encode order" guarantee.
func (e *Encoder) writePackets() {
	defer e.writerWG.Done()
	for resp := range e.orderCh {
		res := <-resp
		if res.err != nil {
			e.logger.Log(logging.Error, "GOP encode failed, dropping GOP", "error", res.err.Error())
			continue
		}
		for _, p := range res.packets {
			var err error
			switch {
			case p.fixed:
				err = e.cw.WriteFixed(p.typ, p.body)
			default:
				err = e.cw.WriteSized(p.typ, p.body)
			}
			if err != nil {
				e.logger.Log(logging.Error, "packet write failed", "type", p.typ.Name(), "error", err.Error())
				return
			}
			if err := e.cw.WriteBare(container.TypeSync); err != nil {
				e.logger.Log(logging.Error, "sync byte write failed", "error", err.Error())
				return
			}
		}
	}
}

// Cancel sets the shared cancellation flag: in-flight GOP encodes
// complete their current tile/frame and return early with only the
// packets already fully built, per spec.md §5's cancellation model. It
// is safe to call more than once.
func (e *Encoder) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	select {
	case <-e.cancel:
	default:
		close(e.cancel)
	}
}

// Close flushes any partial trailing GOP, joins the worker pool and
// writer goroutine, and stops the preset watcher if one is running.
// A trailing GOP shorter than the configured GOP size is always
// flushed using the I-frame/P-frame packet mode regardless of
// cfg.PacketMode, since GOP-unified packets are bound to [8,24] frames
// by spec.md §3.5 invariant 4 and a short tail may fall outside that
// range.
func (e *Encoder) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.mu.Lock()
		tail := e.pending
		e.pending = nil
		e.closed = true
		e.mu.Unlock()

		if len(tail) > 0 {
			if dispatchErr := e.dispatch(tail, config.ModeIFrameP); dispatchErr != nil {
				err = dispatchErr
			}
		}

		close(e.taskCh)
		e.wg.Wait()
		close(e.orderCh)
		e.writerWG.Wait()

		if e.watcher != nil {
			e.watcher.Close()
			e.watchWG.Wait()
		}
	})
	return err
}

// watchPreset watches path for writes and re-applies it as a
// Variables-keyed "Name=value" line file, the hot-reload mechanism
// SPEC_FULL's ambient stack calls for (fsnotify, as in the teacher's
// go.mod).
func (e *Encoder) watchPreset(path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return err
	}
	e.watcher = w
	e.watchWG.Add(1)
	go func() {
		defer e.watchWG.Done()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					e.reloadPreset(path)
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

func (e *Encoder) reloadPreset(path string) {
	f, err := os.Open(path)
	if err != nil {
		e.logger.Log(logging.Warning, "preset reload: open failed", "path", path, "error", err.Error())
		return
	}
	defer f.Close()

	vars := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}
		vars[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}

	e.mu.Lock()
	e.cfg.Update(vars)
	e.mu.Unlock()
	e.logger.Log(logging.Info, "preset reloaded", "path", path, "fields", len(vars))
}

// Stats returns a snapshot of the encoder's error/progress counters.
// The encoder path itself rarely errors (failures are confined to
// decode), so this mirrors the zero-value Stats most of the time; it
// exists for symmetry with Decoder.Stats.
func (e *Encoder) Stats() Stats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.stats
}
