// Package services implements the remote collaborators of the archive pipeline.
//
// # Feed Service
//
// [FeedService] is the two-call surface the crawler depends on: resolve a user code to an
// [models.Account], then page through that account's timeline.
//
// [CandfansService] implements it against the candfans.jp JSON API. Every request carries the
// caller's session cookie, the X-Xsrf-Token header and a fixed referer; all three are passed through verbatim.
//
// # Response Envelope
//
// The API answers with either a success envelope ({"status": ..., "data": ...}) or an error
// envelope ({"code", "message", "errors", "trace"}). Decoding tries the success shape first,
// keyed on the presence of "data", then falls back to the error shape:
//   - success : data is decoded into the caller's type
//   - error : returned as [shared.RemoteError] with every field preserved
//   - neither : returned as [shared.TransportError] with Op "decode"
//
// # Media Fetcher
//
// [MediaService] implements [MediaFetcher] with a plain, unauthenticated GET against the media host.
// Any transport failure or non-2xx status is a [shared.TransportError].
package services
