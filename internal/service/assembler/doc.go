// Package assembler builds release manifests from stored profiles.
//
// Generation loads the profile, fills unset versions, resolves source
// reference locations to tag URLs and resolves artifacts to download URLs
// and checksums. Only invalid input and a missing profile abort a request;
// every other resolution failure degrades the affected field.
package assembler
