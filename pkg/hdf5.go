package digi

import (
	"github.com/next-exp/hdf5-go"
)

type EventDataHDF5 struct {
	evt_number int32
	timestamp  uint64
	nhits      int32
}

type RunInfoHDF5 struct {
	run_number int32
}

type RawHitHDF5 struct {
	evt_number int32
	cell_id    uint64
	adc        uint32
	tdc        uint32
}

type DigiStatsHDF5 struct {
	evt_number    int32
	hits_in       int32
	out_of_window int32
	unknown_ch    int32
	saturated     int32
	suppressed    int32
}

type DigiParamHDF5 struct {
	paramStr [STRLEN]byte
	value    float64
}

const STRLEN = 20

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

func openFile(fname string) *hdf5.File {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		panic(err)
	}
	return f
}

func createGroup(file *hdf5.File, groupName string) *hdf5.Group {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		panic(&ErrCreateGroup{GroupName: groupName, Err: err})
	}
	return g
}

func createTable(group *hdf5.Group, name string, datatype interface{}) *hdf5.Dataset {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	file_space, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		panic(&ErrCreateTable{TableName: name, Err: err})
	}

	// create property list
	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		panic(&ErrCreateTable{TableName: name, Err: err})
	}

	chunks := []uint{32768}
	plist.SetChunk(chunks)

	// Set compression level
	if configuration.UseBlosc {
		hdf5.ConfigureBloscFilter(plist, configuration.BloscAlgorithm.Code, configuration.CompressionLevel, configuration.BloscShuffle.Code)
	} else {
		plist.SetDeflate(configuration.CompressionLevel)
	}

	// create the memory data type
	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		panic(&ErrCreateTable{TableName: name, Err: err})
	}

	// create the dataset
	dset, err := group.CreateDatasetWith(name, dtype, file_space, plist)
	if err != nil {
		panic(&ErrCreateTable{TableName: name, Err: err})
	}
	return dset
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, offset int) {
	array := []T{data}
	writeArrayToTable(dataset, &array, offset)
}

// writeArrayToTable appends the array at the given row offset, extending
// the dataset as needed.
func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, offset int) {
	length := uint(len(*data))
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		panic(err)
	}

	// extend
	rowsInFile := uint(offset)
	newsize := []uint{rowsInFile + length}
	dataset.Resize(newsize)
	filespace := dataset.Space()

	start := []uint{rowsInFile}
	count := []uint{length}
	filespace.SelectHyperslab(start, nil, count, nil)

	err = dataset.WriteSubset(data, dataspace, filespace)
	if err != nil {
		panic(err)
	}

	dataspace.Close()
	filespace.Close()
}
