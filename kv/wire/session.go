package wire

// WriteSession encodes one message across one or more buffer-write calls. The
// session stores the next step to run so a suspended encode resumes at the
// exact field it stopped at. A session is single-threaded; concurrent encodes
// of the same message need separate sessions.
type WriteSession struct {
	msg         Message
	steps       []writeStep
	state       int
	typeWritten bool
	done        bool
}

func NewWriteSession(msg Message) *WriteSession {
	return &WriteSession{msg: msg, steps: msg.writeSteps()}
}

// Encode writes the message into buf starting at the stored cursor. It
// returns false when buf ran out of room before the last field; the caller
// retries later with a fresh buffer and no completed field is re-emitted.
// Returning true completes the session; a subsequent call starts a new one.
func (s *WriteSession) Encode(buf *Buffer) bool {
	if s.done {
		s.state = 0
		s.typeWritten = false
		s.done = false
	}

	if !s.typeWritten {
		if !buf.PutByte(s.msg.Type()) {
			return false
		}
		s.typeWritten = true
	}

	for s.state < len(s.steps) {
		if !s.steps[s.state](buf) {
			return false
		}
		s.state++
	}

	s.done = true
	return true
}

// ReadSession decodes one message across one or more buffer-read calls,
// dispatching on the leading type tag through a registry.
type ReadSession struct {
	reg   *Registry
	msg   Message
	steps []readStep
	state int
	done  bool
}

func NewReadSession(reg *Registry) *ReadSession {
	return &ReadSession{reg: reg}
}

// Decode consumes bytes from buf, resuming at the stored cursor. It returns
// (false, nil) when buf was exhausted mid-message, (true, nil) when the
// message is complete, and a non-nil error on a malformed stream. After
// completion the next call starts a fresh session.
func (s *ReadSession) Decode(buf *Buffer) (bool, error) {
	if s.done {
		s.msg = nil
		s.steps = nil
		s.state = 0
		s.done = false
	}

	if s.msg == nil {
		typ, ok := buf.GetByte()
		if !ok {
			return false, nil
		}
		msg, err := s.reg.New(typ)
		if err != nil {
			return false, err
		}
		s.msg = msg
		s.steps = msg.readSteps()
	}

	for s.state < len(s.steps) {
		if !s.steps[s.state](buf) {
			return false, nil
		}
		s.state++
	}

	s.done = true
	return true, nil
}

// Message returns the decoded message once Decode has returned true, nil
// before that.
func (s *ReadSession) Message() Message {
	if !s.done {
		return nil
	}
	return s.msg
}
