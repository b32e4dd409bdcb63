// Package youtube retrieves caption segments and display metadata for a
// video.
//
// Two transcript sources are provided. WatchPageFetcher scrapes the player
// response embedded in the watch page, picks a caption track by language
// preference, and downloads its timed text. YTDLPFetcher shells out to yt-dlp
// and parses the WebVTT it writes. ChainFetcher tries sources in order and
// reports the most specific failure when all of them fail.
//
// Metadata comes from oEmbed, the watch page's meta tags, or yt-dlp's JSON
// dump, merged by ChainMetadata until both title and channel are known.
//
// All HTTP traffic goes through Client, which applies a shared rate limit and
// the configured HTTPS proxy.
package youtube
