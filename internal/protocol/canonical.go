package protocol

// Canonical is the 11-row protocol table shipped with the original
// source, covering the common PT2262/HT6P20B/HS2303-PT/Conrad-RS200/
// 1ByOne/HT12E/SM5212 family of OOK remotes.
var Canonical = NewTable([]Timing{
	BuildTiming(1, 350, 20, 1, 31, 1, 3, 3, 1, false),  // PT2262
	BuildTiming(2, 650, 20, 1, 10, 1, 3, 3, 1, false),
	BuildTiming(3, 100, 20, 30, 71, 4, 11, 9, 6, false),
	BuildTiming(4, 380, 20, 1, 6, 1, 3, 3, 1, false),
	BuildTiming(5, 500, 20, 6, 14, 1, 2, 2, 1, false),
	BuildTiming(6, 450, 20, 1, 23, 1, 2, 2, 1, true), // HT6P20B
	BuildTiming(7, 150, 20, 2, 62, 1, 6, 6, 1, false), // HS2303-PT
	BuildTiming(8, 200, 20, 3, 130, 7, 16, 3, 16, false), // Conrad RS-200
	BuildTiming(9, 365, 20, 1, 18, 3, 1, 1, 3, true),     // 1ByOne Doorbell
	BuildTiming(10, 270, 20, 1, 36, 1, 2, 2, 1, true),    // HT12E
	BuildTiming(11, 320, 20, 1, 36, 1, 2, 2, 1, true),    // SM5212
})
