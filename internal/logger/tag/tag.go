// Package tag provides common slog attributes for structured logging.
package tag

import "log/slog"

func Error(err error) slog.Attr {
	if err != nil {
		return slog.String("error", err.Error())
	}
	return slog.String("error", "")
}

func Stage(name string) slog.Attr {
	return slog.String("stage", name)
}

func Artifact(id int64) slog.Attr {
	return slog.Int64("artifact", id)
}

func Execution(id int64) slog.Attr {
	return slog.Int64("execution", id)
}

func Feature(name string) slog.Attr {
	return slog.String("feature", name)
}

func Path(p string) slog.Attr {
	return slog.String("path", p)
}
