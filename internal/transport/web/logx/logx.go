package logx

import (
	"fmt"
	"log"
	"strings"
)

// Info/Error пишут строку в формате key=value, как и mw.Logging:
// lvl=info req_id=... op=... msg="..." k=v ...
func Info(l *log.Logger, reqID, op, msg string, kv ...any) {
	l.Print(line("info", reqID, op, msg, nil, kv))
}

func Warn(l *log.Logger, reqID, op, msg string, err error, kv ...any) {
	l.Print(line("warn", reqID, op, msg, err, kv))
}

func Error(l *log.Logger, reqID, op, msg string, err error, kv ...any) {
	l.Print(line("error", reqID, op, msg, err, kv))
}

func line(lvl, reqID, op, msg string, err error, kv []any) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "lvl=%s req_id=%s op=%s msg=%q", lvl, reqID, op, msg)
	if err != nil {
		fmt.Fprintf(&sb, " err=%q", err.Error())
	}
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", kv[i], kv[i+1])
	}
	if len(kv)%2 == 1 {
		fmt.Fprintf(&sb, " extra=%v", kv[len(kv)-1])
	}
	return sb.String()
}
