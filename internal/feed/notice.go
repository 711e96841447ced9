package feed

// NoticeKind distinguishes confirmations from failures.
type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeError
)

// Notice is a transient message for the user about a mutation outcome.
type Notice struct {
	Kind NoticeKind
	Text string
}

// IsZero reports whether the notice carries no message.
func (n Notice) IsZero() bool { return n.Text == "" }

func successNotice(text string) Notice { return Notice{Kind: NoticeSuccess, Text: text} }

func errorNotice(text string) Notice { return Notice{Kind: NoticeError, Text: text} }
