package lsp

import (
	"encoding/json"
	"errors"

	"htmlfmt/internal/driver"
)

// handleFormatting answers with a single whole-document edit. Unparseable
// documents get a null result so the editor leaves the buffer alone.
func (s *Server) handleFormatting(msg *rpcMessage) error {
	var params documentFormattingParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	doc, ok := s.docs[uri]
	var text string
	if ok {
		text = doc.text
	}
	s.mu.Unlock()
	if !ok {
		return s.sendError(msg.ID, codeInvalidParams, "document is not open: "+params.TextDocument.URI)
	}

	opts, err := s.optionsFor(uri, &params.Options)
	if err != nil {
		return s.sendError(msg.ID, codeInternalError, err.Error())
	}
	edits, err := formatEdits(uriToPath(uri), text, driver.FormatOptions{Options: opts})
	if err != nil {
		if errors.Is(err, driver.ErrCouldNotParse) {
			s.logger.Info("could not parse HTML", "uri", uri)
			return s.sendResponse(msg.ID, nil)
		}
		return s.sendError(msg.ID, codeInternalError, err.Error())
	}
	return s.sendResponse(msg.ID, edits)
}

func formatEdits(path, text string, opts driver.FormatOptions) ([]textEdit, error) {
	res := driver.FormatSource(path, []byte(text), opts)
	if res.Err != nil {
		return nil, res.Err
	}
	formatted := string(res.Formatted)
	if formatted == text {
		return []textEdit{}, nil
	}
	return []textEdit{{Range: fullRange(text), NewText: formatted}}, nil
}
