package registrar

// State is one step of a registration run.
type State string

const (
	StateNoMainTable     State = "NO_MAIN_TABLE"
	StateDirectLoad      State = "DIRECT_LOAD"
	StateMainTableExists State = "MAIN_TABLE_EXISTS"
	StateStaging         State = "STAGING"
	StateLoadStaged      State = "LOAD_STAGED"
	StateVerifyCount     State = "VERIFY_COUNT"
	StateDiffAndNotify   State = "DIFF_AND_NOTIFY"
	StateApplyChanges    State = "APPLY_CHANGES"
	StateVerifyNoDiff    State = "VERIFY_NO_DIFF"
	StateCleanup         State = "CLEANUP"
	StateDone            State = "DONE"
	StateCleanupAndFail  State = "CLEANUP_AND_FAIL"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateCleanupAndFail
}
