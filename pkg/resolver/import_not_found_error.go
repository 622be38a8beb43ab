package resolver

import "fmt"

// ErrImportNotFound is an error value assigned to an Import when no indexed
// file provides the imported path.  It is not reported: includes of unknown
// files are ignored.
var ErrImportNotFound = fmt.Errorf("import not found")

// ErrAllCandidatesExcluded is assigned to an Import when every owner of the
// imported path was excluded by the importing target.
var ErrAllCandidatesExcluded = fmt.Errorf("all candidates excluded")
