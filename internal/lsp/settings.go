package lsp

import (
	"encoding/json"

	"htmlfmt/internal/format"
)

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	s.applySettings(params.Settings)
	return nil
}

// applySettings merges the "htmlfmt" section; absent keys keep their value.
func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		s.logger.Warn("ignoring malformed settings", "err", err)
		return
	}
	in := settings.Htmlfmt
	s.mu.Lock()
	if in.MaxLineLength != nil {
		s.settings.MaxLineLength = in.MaxLineLength
	}
	if in.MaxAttributeLength != nil {
		s.settings.MaxAttributeLength = in.MaxAttributeLength
	}
	if in.NormalizeUnicode != nil {
		s.settings.NormalizeUnicode = in.NormalizeUnicode
	}
	if in.Trace != nil {
		s.traceLSP = *in.Trace
	}
	for uri := range s.docs {
		s.dirty[uri] = struct{}{}
	}
	hasDocs := len(s.docs) > 0
	s.mu.Unlock()
	if hasDocs {
		s.scheduleDiagnostics()
	}
}

// optionsFor layers, lowest first: server defaults, project config (when
// resolvable), editor settings, then the request's tab options unless the
// project config already decided indentation.
func (s *Server) optionsFor(uri string, editor *formattingOptions) (format.Options, error) {
	s.mu.Lock()
	opts := s.base
	settings := s.settings
	resolve := s.resolve
	s.mu.Unlock()

	fromConfig := false
	if path := uriToPath(uri); path != "" && resolve != nil {
		resolved, found, err := resolve(path)
		if err != nil {
			return opts, err
		}
		if found {
			opts, fromConfig = resolved, true
		}
	}
	if settings.MaxLineLength != nil {
		opts.MaxLineLength = *settings.MaxLineLength
	}
	if settings.MaxAttributeLength != nil {
		opts.MaxAttributeLength = *settings.MaxAttributeLength
	}
	if settings.NormalizeUnicode != nil {
		opts.NormalizeUnicode = *settings.NormalizeUnicode
	}
	if editor != nil && !fromConfig {
		if editor.TabSize > 0 {
			opts.IndentWidth = editor.TabSize
		}
		opts.UseTabs = !editor.InsertSpaces
	}
	return opts, nil
}
