package log

type Event struct{}

func (e *Event) Str(key, val string) *Event { return e }

func (e *Event) Msg(msg string) {}

func Info() *Event { return &Event{} }

func Fatal() *Event { return &Event{} }

func Panic() *Event { return &Event{} }
