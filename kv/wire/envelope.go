package wire

// envelope carries the leading fields shared by every message in this family:
// the transaction version identifying and ordering the transaction, and a
// header flag count. Its steps occupy the first positions of every concrete
// message's step table.
type envelope struct {
	xidVer  Version
	flagCnt int32
}

// XidVersion returns the transaction version this message belongs to.
func (e *envelope) XidVersion() Version {
	return e.xidVer
}

func (e *envelope) writeSteps() []writeStep {
	return []writeStep{
		func(buf *Buffer) bool { return buf.PutVersion(e.xidVer) },
		func(buf *Buffer) bool { return buf.PutInt32(e.flagCnt) },
	}
}

func (e *envelope) readSteps() []readStep {
	return []readStep{
		func(buf *Buffer) bool {
			v, ok := buf.GetVersion()
			if ok {
				e.xidVer = v
			}
			return ok
		},
		func(buf *Buffer) bool {
			v, ok := buf.GetInt32()
			if ok {
				e.flagCnt = v
			}
			return ok
		},
	}
}
