package captions

import "strings"

// rollingCaptions mimics an auto-generated caption track: every cue repeats
// the previous last line and is followed by a 10ms re-display cue.
func rollingCaptions() string {
	return strings.Join([]string{
		"WEBVTT",
		"Kind: captions",
		"Language: en",
		"",
		"00:00:00.000 --> 00:00:02.350 align:start position:0%",
		" ",
		"hello<00:00:00.480><c> everyone</c><00:00:00.960><c> and</c><00:00:01.200><c> welcome</c><00:00:01.680><c> to</c><00:00:01.920><c> the</c>",
		"",
		"00:00:02.350 --> 00:00:02.360 align:start position:0%",
		"hello everyone and welcome to the",
		" ",
		"",
		"00:00:02.360 --> 00:00:05.000 align:start position:0%",
		"hello everyone and welcome to the",
		"show<00:00:02.800><c> today</c><00:00:03.200><c> we</c><00:00:03.600><c> are</c><00:00:04.000><c> going</c>",
		"",
		"00:00:05.000 --> 00:00:05.010 align:start position:0%",
		"show today we are going",
		" ",
		"",
		"00:00:05.010 --> 00:00:08.000 align:start position:0%",
		"show today we are going",
		"to<00:00:05.500><c> talk</c><00:00:06.000><c> about</c><00:00:06.500><c> go</c>",
		"",
		"00:00:11.000 --> 00:00:13.000 align:start position:0%",
		" ",
		"so<00:00:11.400><c> first</c><00:00:11.800><c> things</c><00:00:12.200><c> first</c>",
		"",
	}, "\n")
}

const rollingTranscript = "hello everyone and welcome to the show today we are going to talk about go\n\nso first things first"
