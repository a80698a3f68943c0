package ui

import "meetdl/internal/progress"

type depsCheckedMsg struct {
	Tool string // name of the backend downloads will use
	Err  error
}

type jobUpdateMsg struct {
	U progress.Update
}

type jobLogMsg struct {
	L progress.Log
}

type jobResultMsg struct {
	R progress.Result
}

type allDoneMsg struct{}
