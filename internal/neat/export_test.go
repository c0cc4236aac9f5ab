package neat

// TestINI is the INI source shared with the external tests.
var TestINI = testINI
