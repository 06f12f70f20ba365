// Package permissions grants users access to the directories and binaries
// they need when plans run under a different account than the scheduler.
//
// On Windows access is adjusted with icacls.exe. On Unix directories are
// handed over by changing their owner.
package permissions
