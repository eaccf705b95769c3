package services

// Recipients selects who a domain event fans out to. Candidate and client-org
// selectors are resolved to user ids by the dispatcher at delivery time;
// unresolvable selectors contribute zero recipients.
type Recipients struct {
	UserIDs      []string
	CandidateIDs []string
	ClientOrgIDs []string
}

// Event is a domain event recorded by a core mutation and dispatched after
// the mutation's transaction commits. Dispatch is best-effort: losing an
// event never fails the operation that produced it.
type Event struct {
	Type       string
	Title      string
	Message    string
	Severity   string
	Metadata   map[string]any
	Recipients Recipients
}
