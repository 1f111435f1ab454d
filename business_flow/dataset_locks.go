package businessflow

import "sync"

var (
	datasetImportMutex sync.Mutex
)

func tryLockDatasetImport() bool {
	return datasetImportMutex.TryLock()
}

func unlockDatasetImport() {
	datasetImportMutex.Unlock()
}
