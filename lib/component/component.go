package component

import (
	"weir/weir"
)

var (
	sourceMap   = map[string]weir.NewSourceFunc{}
	operatorMap = map[string]weir.NewOperatorFunc{}
	sinkMap     = map[string]weir.NewSinkFunc{}
)

func RegisterNewSourceFunc(_type string, sourceFunc weir.NewSourceFunc) {
	sourceMap[_type] = sourceFunc
}

func RegisterNewOperatorFunc(_type string, operatorFunc weir.NewOperatorFunc) {
	operatorMap[_type] = operatorFunc
}

func RegisterNewSinkFunc(_type string, sinkFunc weir.NewSinkFunc) {
	sinkMap[_type] = sinkFunc
}

func NewSourceFunc(_type string) weir.NewSourceFunc {
	return sourceMap[_type]
}

func NewOperatorFunc(_type string) weir.NewOperatorFunc {
	return operatorMap[_type]
}

func NewSinkFunc(_type string) weir.NewSinkFunc {
	return sinkMap[_type]
}

func ListSourceDef() map[string]weir.PropertiesDef {
	defs := map[string]weir.PropertiesDef{}
	for name, sourceFunc := range sourceMap {
		defs[name] = sourceFunc().PropertiesDef()
	}
	return defs
}

func ListOperatorDef() map[string]weir.PropertiesDef {
	defs := map[string]weir.PropertiesDef{}
	for name, operatorFunc := range operatorMap {
		defs[name] = operatorFunc().PropertiesDef()
	}
	return defs
}

func ListSinkDef() map[string]weir.PropertiesDef {
	defs := map[string]weir.PropertiesDef{}
	for name, sinkFunc := range sinkMap {
		defs[name] = sinkFunc().PropertiesDef()
	}
	return defs
}
