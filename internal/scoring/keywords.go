package scoring

// auditKeywords is the fixed vocabulary of audit terms. Tokens are compared
// after lowercasing, so entries are lowercase.
var auditKeywords = map[string]struct{}{
	"policy": {}, "documentation": {}, "config": {}, "screenshot": {},
	"logs": {}, "audit": {}, "compliance": {}, "review": {},
	"approval": {}, "signed": {}, "attestation": {}, "report": {},
	"testing": {}, "validation": {}, "monitoring": {}, "procedure": {},
	"checklist": {}, "implemented": {}, "established": {}, "deployed": {},
	"configured": {}, "verified": {}, "process": {}, "framework": {},
	"standard": {}, "guideline": {}, "control": {}, "measure": {},
}

// qualityIndicators are matched as substrings of the lowercased evidence, so
// "documented" counts for "document".
var qualityIndicators = []string{
	"document", "documentation", "policy", "procedure", "process",
	"implemented", "established", "configured", "deployed", "verified",
	"testing", "validation", "monitoring", "audit", "compliance",
	"screenshot", "logs", "report", "checklist", "review",
}

// bareResponses never count as evidence regardless of length.
var bareResponses = map[string]struct{}{
	"yes": {}, "y": {}, "yep": {}, "yeah": {}, "yeh": {}, "yers": {},
	"ok": {}, "okay": {}, "sure": {}, "correct": {}, "true": {},
	"no": {}, "n": {}, "nope": {}, "false": {}, "none": {}, "na": {}, "n/a": {},
}

// IsAuditKeyword reports whether term belongs to the audit vocabulary.
func IsAuditKeyword(term string) bool {
	_, ok := auditKeywords[term]
	return ok
}
