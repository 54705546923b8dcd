// Package password scores candidate passwords and hashes accepted ones.
//
// # Strength
//
// [CheckStrength] evaluates five criteria in a fixed order (length >= 8,
// lowercase, uppercase, digit, one of @$!%*?&) plus a silent bonus for
// length >= 12. The result is a score in [0, 6] and the ordered list of
// unmet criteria, suitable for a live indicator. [Strength.Level] maps the
// score onto the Weak / Medium / Strong bands.
//
// # Hashing
//
// [Hasher] produces Argon2id hashes in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Hasher.NeedsRehash] reports hashes produced with weaker parameters so the
// caller can re-hash after the next successful login.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords.
//   - Import any other authshield package.
//   - Log plaintext passwords.
package password
