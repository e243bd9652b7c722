package wrtinstance

import (
	"testing"

	"github.com/pulseengine/wrt-go/internal/wrtcap"
	"github.com/pulseengine/wrt-go/internal/wrtengine"
	"github.com/pulseengine/wrt-go/internal/wrtinstr"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
	"github.com/stretchr/testify/require"
)

func i32() wrtvalue.ValueType { return wrtvalue.ValueType{Kind: wrtvalue.KindS32} }

func addFunc() *wrtengine.Function {
	return &wrtengine.Function{
		Type: wrtvalue.FuncType{Params: []wrtvalue.ValueType{i32(), i32()}, Results: []wrtvalue.ValueType{i32()}},
		Body: []wrtengine.Instr{
			{Op: wrtinstr.OpLocalGet, Index: 0},
			{Op: wrtinstr.OpLocalGet, Index: 1},
			{Op: wrtinstr.OpI32Add},
		},
	}
}

func TestInstantiate_ExportedFunctionCallable(t *testing.T) {
	mod := &DecodedModule{
		Functions: []*wrtengine.Function{addFunc()},
		Exports:   []Export{{Name: "add", Kind: ExportFunc, Index: 0}},
	}
	inst, err := Instantiate(testCapCtx(t), wrtcap.CrateRuntime, wrtcap.ProfileASILD, mod, ImportValues{}, 1000, 64)
	require.NoError(t, err)

	result, err := inst.InvokeExport("add", []wrtvalue.Value{wrtvalue.S32(3), wrtvalue.S32(4)})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	require.EqualValues(t, 7, result.Results[0].AsS32())
}

func TestInstantiate_UnknownExportErrors(t *testing.T) {
	mod := &DecodedModule{Functions: []*wrtengine.Function{addFunc()}}
	inst, err := Instantiate(testCapCtx(t), wrtcap.CrateRuntime, wrtcap.ProfileASILD, mod, ImportValues{}, 1000, 64)
	require.NoError(t, err)

	_, err = inst.InvokeExport("missing", nil)
	require.Error(t, err)
}

func TestInstantiate_AppliesDataSegment(t *testing.T) {
	mod := &DecodedModule{
		Memory: &MemoryLimits{Min: 1, Max: 1, HasMax: true},
		Data: []DataSegment{
			{OffsetExpr: &ConstExpr{Kind: ConstExprValue, Value: wrtvalue.U32(0)}, Init: []byte{0xa, 0xb, 0xc}},
		},
	}
	inst, err := Instantiate(testCapCtx(t), wrtcap.CrateRuntime, wrtcap.ProfileASILD, mod, ImportValues{}, 1000, 64)
	require.NoError(t, err)

	data, err := inst.Memory().Read(0, 3)
	require.NoError(t, err)
	require.Equal(t, []byte{0xa, 0xb, 0xc}, data)
}

func TestInstantiate_AppliesElementSegment(t *testing.T) {
	mod := &DecodedModule{
		Functions: []*wrtengine.Function{addFunc()},
		Tables:    []TableLimits{{RefKind: wrtvalue.KindFuncRef, Min: 4, Max: 4, HasMax: true}},
		Elements: []ElementSegment{
			{OffsetExpr: &ConstExpr{Kind: ConstExprValue, Value: wrtvalue.U32(1)}, TableIndex: 0, Init: []wrtvalue.Value{wrtvalue.FuncRef(0, false)}},
		},
	}
	inst, err := Instantiate(testCapCtx(t), wrtcap.CrateRuntime, wrtcap.ProfileASILD, mod, ImportValues{}, 1000, 64)
	require.NoError(t, err)

	v, err := inst.machine.Table(0).Get(1)
	require.NoError(t, err)
	require.False(t, v.IsNullFuncRef())
}

func TestInstantiate_GlobalInitFromEarlierGlobal(t *testing.T) {
	mod := &DecodedModule{
		Globals: []GlobalDef{
			{Type: i32(), Init: &ConstExpr{Kind: ConstExprValue, Value: wrtvalue.S32(41)}},
			{Type: i32(), Init: &ConstExpr{Kind: ConstExprGlobalGet, GlobalIdx: 0}},
		},
	}
	inst, err := Instantiate(testCapCtx(t), wrtcap.CrateRuntime, wrtcap.ProfileASILD, mod, ImportValues{}, 1000, 64)
	require.NoError(t, err)
	require.EqualValues(t, 41, inst.globals[1].AsS32())
}

func TestInstantiate_StartFunctionTrapFailsInstantiation(t *testing.T) {
	trapping := &wrtengine.Function{
		Type: wrtvalue.FuncType{},
		Body: []wrtengine.Instr{{Op: wrtinstr.OpUnreachable}},
	}
	idx := uint32(0)
	mod := &DecodedModule{
		Functions: []*wrtengine.Function{trapping},
		StartFunc: &idx,
	}
	_, err := Instantiate(testCapCtx(t), wrtcap.CrateRuntime, wrtcap.ProfileASILD, mod, ImportValues{}, 1000, 64)
	require.Error(t, err)
}
