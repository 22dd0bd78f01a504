// Package storage provides JSON persistence for schedule artifacts.
//
// A run produces three named artifacts: the schedule, the athletes feed, and a
// last-updated marker. Each Store backend writes them as JSON documents and reports their
// modification time, which feeds the cache gate. The local file store defaults to
// ~/.local/share/owg-schedule/; S3, Redis and GitHub Gist backends can serve as the primary store or
// as best-effort mirrors.
package storage
