// Package requirement parses PEP 508 dependency specifications.
//
// # Grammar
//
// A requirement names a distribution, optionally followed by extras, either a
// version specifier or a direct URL reference, and an environment marker:
//
//	requests[security,socks] >=2.8.1, ==2.8.* ; python_version < "2.7"
//	pip @ https://github.com/pypa/pip/archive/1.3.1.zip
//	six (>=1.10)
//
// [Parse] validates every version clause against PEP 440 and rebuilds the
// marker into a canonical string, so two spellings of the same requirement
// render identically through [Requirement.String].
//
// # Errors
//
// Every grammar violation is reported as a
// [derrors.ErrCodeMalformedRequirement] error naming the offending input.
//
// [derrors.ErrCodeMalformedRequirement]: github.com/matzehuels/depconv/pkg/errors.ErrCodeMalformedRequirement
package requirement
