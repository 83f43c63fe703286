// Package model defines the census form vocabulary shared by every other
// package: structured field identities, field declarations, values and the
// form state map. Identities stay structured until a wire key is needed
// (drafts, payloads, schema), at which point Identity.Key composes the
// `child2_dob` style names the submission endpoint expects. Dynamic blocks
// (children, job seekers, dependents) are addressed through Group and either a
// 1-based Position or a sanitised Namespace.
package model
