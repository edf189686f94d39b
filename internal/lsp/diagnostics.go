package lsp

import (
	"context"
	"errors"
	"sort"
	"time"

	"htmlfmt/internal/diag"
	"htmlfmt/internal/driver"
	"htmlfmt/internal/source"
)

// scheduleDiagnostics restarts the debounce window; only the last call in a
// burst of edits triggers a run.
func (s *Server) scheduleDiagnostics() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdownRequested {
		return
	}
	s.seq++
	seq := s.seq
	if s.diagCancel != nil {
		s.diagCancel()
		s.diagCancel = nil
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		s.runDiagnostics(seq)
	})
}

func (s *Server) stopDiagnostics() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
	if s.diagCancel != nil {
		s.diagCancel()
		s.diagCancel = nil
	}
}

type pendingDoc struct {
	uri     string
	text    string
	version int
}

// runDiagnostics formats every dirty document and publishes what the parser
// reported. A newer schedule (seq) or a version bump discards the result.
func (s *Server) runDiagnostics(seq uint64) {
	s.mu.Lock()
	if seq != s.seq || s.shutdownRequested {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.diagCancel = cancel
	pending := make([]pendingDoc, 0, len(s.dirty))
	for uri := range s.dirty {
		if doc, ok := s.docs[uri]; ok {
			pending = append(pending, pendingDoc{uri: uri, text: doc.text, version: doc.version})
		}
	}
	s.dirty = make(map[string]struct{})
	s.mu.Unlock()
	defer cancel()

	sort.Slice(pending, func(i, j int) bool { return pending[i].uri < pending[j].uri })
	for _, p := range pending {
		if ctx.Err() != nil {
			s.requeue(pending)
			return
		}
		list, err := s.diagnose(p)
		if err != nil {
			s.logger.Warn("diagnostics failed", "uri", p.uri, "err", err)
			continue
		}
		if !s.stillCurrent(p) {
			continue
		}
		if err := s.sendPublish(p.uri, &p.version, list); err != nil {
			s.logger.Warn("publish failed", "uri", p.uri, "err", err)
			continue
		}
		s.mu.Lock()
		if len(list) > 0 {
			s.published[p.uri] = struct{}{}
		} else {
			delete(s.published, p.uri)
		}
		s.mu.Unlock()
	}
}

func (s *Server) requeue(pending []pendingDoc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pending {
		if _, ok := s.docs[p.uri]; ok {
			s.dirty[p.uri] = struct{}{}
		}
	}
}

func (s *Server) stillCurrent(p pendingDoc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[p.uri]
	return ok && doc.version == p.version && doc.text == p.text
}

func (s *Server) diagnose(p pendingDoc) ([]lspDiagnostic, error) {
	opts, err := s.optionsFor(p.uri, nil)
	if err != nil {
		return nil, err
	}
	res := driver.FormatSource(uriToPath(p.uri), []byte(p.text), driver.FormatOptions{Options: opts})
	list := make([]lspDiagnostic, 0, len(res.Diagnostics)+1)
	for _, d := range res.Diagnostics {
		list = append(list, toLSPDiagnostic(res.File, d))
	}
	if res.Err != nil && len(list) == 0 {
		if !errors.Is(res.Err, driver.ErrCouldNotParse) {
			return nil, res.Err
		}
		list = append(list, lspDiagnostic{
			Severity: 1,
			Code:     diag.FmtEmptyOutput.ID(),
			Source:   "htmlfmt",
			Message:  diag.FmtEmptyOutput.Title(),
		})
	}
	return list, nil
}

func toLSPDiagnostic(sf *source.File, d diag.Diagnostic) lspDiagnostic {
	out := lspDiagnostic{
		Severity: lspSeverity(d.Severity),
		Code:     d.Code.ID(),
		Source:   "htmlfmt",
		Message:  d.Message,
	}
	if sf != nil {
		text := string(sf.Content)
		out.Range = lspRange{
			Start: positionForOffset(text, int(d.Primary.Start)),
			End:   positionForOffset(text, int(d.Primary.End)),
		}
	}
	return out
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	default:
		return 3
	}
}

func (s *Server) clearPublishedDiagnostics() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.published))
	for uri := range s.published {
		uris = append(uris, uri)
	}
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	sort.Strings(uris)
	for _, uri := range uris {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.logger.Warn("failed to clear diagnostics", "uri", uri, "err", err)
		}
	}
}
