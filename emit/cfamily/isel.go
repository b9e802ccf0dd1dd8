package cfamily

import "github.com/TheJackiMonster/shady/ir"

// defaultISel covers every PrimOp whose C-family rendering is the same
// across all four dialects: arithmetic and comparison infix operators,
// bitwise operators, and the math library functions every dialect exposes
// under the same or a trivially-prefixed name. Per-dialect files only need
// an override table for what actually differs (CUDA's "__fsqrt_rn" and
// "rsqrtf", GLSL's float "mod"); C11 and ISPC use this table unchanged.
var defaultISel = map[iselKey]ISelEntry{
	{ir.OpAdd, classSignedInt}:   {Infix, "+"},
	{ir.OpAdd, classUnsignedInt}: {Infix, "+"},
	{ir.OpAdd, classFloat}:       {Infix, "+"},
	{ir.OpSub, classSignedInt}:   {Infix, "-"},
	{ir.OpSub, classUnsignedInt}: {Infix, "-"},
	{ir.OpSub, classFloat}:       {Infix, "-"},
	{ir.OpMul, classSignedInt}:   {Infix, "*"},
	{ir.OpMul, classUnsignedInt}: {Infix, "*"},
	{ir.OpMul, classFloat}:       {Infix, "*"},
	{ir.OpDiv, classSignedInt}:   {Infix, "/"},
	{ir.OpDiv, classUnsignedInt}: {Infix, "/"},
	{ir.OpDiv, classFloat}:       {Infix, "/"},
	{ir.OpMod, classSignedInt}:   {Infix, "%"},
	{ir.OpMod, classUnsignedInt}: {Infix, "%"},

	{ir.OpEq, classSignedInt}:    {Infix, "=="},
	{ir.OpEq, classUnsignedInt}:  {Infix, "=="},
	{ir.OpEq, classFloat}:        {Infix, "=="},
	{ir.OpEq, classBool}:         {Infix, "=="},
	{ir.OpNeq, classSignedInt}:   {Infix, "!="},
	{ir.OpNeq, classUnsignedInt}: {Infix, "!="},
	{ir.OpNeq, classFloat}:       {Infix, "!="},
	{ir.OpNeq, classBool}:        {Infix, "!="},
	{ir.OpLt, classSignedInt}:    {Infix, "<"},
	{ir.OpLt, classUnsignedInt}:  {Infix, "<"},
	{ir.OpLt, classFloat}:        {Infix, "<"},
	{ir.OpLeq, classSignedInt}:   {Infix, "<="},
	{ir.OpLeq, classUnsignedInt}: {Infix, "<="},
	{ir.OpLeq, classFloat}:       {Infix, "<="},
	{ir.OpGt, classSignedInt}:    {Infix, ">"},
	{ir.OpGt, classUnsignedInt}:  {Infix, ">"},
	{ir.OpGt, classFloat}:        {Infix, ">"},
	{ir.OpGeq, classSignedInt}:   {Infix, ">="},
	{ir.OpGeq, classUnsignedInt}: {Infix, ">="},
	{ir.OpGeq, classFloat}:       {Infix, ">="},

	{ir.OpAnd, classSignedInt}:   {Infix, "&"},
	{ir.OpAnd, classUnsignedInt}: {Infix, "&"},
	{ir.OpAnd, classBool}:        {Infix, "&&"},
	{ir.OpOr, classSignedInt}:    {Infix, "|"},
	{ir.OpOr, classUnsignedInt}:  {Infix, "|"},
	{ir.OpOr, classBool}:         {Infix, "||"},
	{ir.OpXor, classSignedInt}:   {Infix, "^"},
	{ir.OpXor, classUnsignedInt}: {Infix, "^"},
	{ir.OpXor, classBool}:        {Infix, "^"},
	{ir.OpNot, classSignedInt}:   {Prefix, "~"},
	{ir.OpNot, classUnsignedInt}: {Prefix, "~"},
	{ir.OpNot, classBool}:        {Prefix, "!"},
	{ir.OpShl, classSignedInt}:   {Infix, "<<"},
	{ir.OpShl, classUnsignedInt}: {Infix, "<<"},
	{ir.OpShr, classSignedInt}:   {Infix, ">>"},
	{ir.OpShr, classUnsignedInt}: {Infix, ">>"},

	{ir.OpMin, classSignedInt}:   {Call, "min"},
	{ir.OpMin, classUnsignedInt}: {Call, "min"},
	{ir.OpMin, classFloat}:       {Call, "fmin"},
	{ir.OpMax, classSignedInt}:   {Call, "max"},
	{ir.OpMax, classUnsignedInt}: {Call, "max"},
	{ir.OpMax, classFloat}:       {Call, "fmax"},
	{ir.OpAbs, classSignedInt}:   {Call, "abs"},
	{ir.OpAbs, classFloat}:       {Call, "fabs"},
	{ir.OpSign, classFloat}:      {Call, "copysign"},
	{ir.OpFloor, classFloat}:     {Call, "floor"},
	{ir.OpCeil, classFloat}:      {Call, "ceil"},
	{ir.OpRound, classFloat}:     {Call, "round"},
	{ir.OpSqrt, classFloat}:      {Call, "sqrt"},
	{ir.OpExp, classFloat}:       {Call, "exp"},
	{ir.OpLog, classFloat}:       {Call, "log"},
	{ir.OpSin, classFloat}:       {Call, "sin"},
	{ir.OpCos, classFloat}:       {Call, "cos"},
	{ir.OpTan, classFloat}:       {Call, "tan"},
	{ir.OpPow, classFloat}:       {Call, "pow"},
}

func (e ISelEntry) withSymbol(s string) ISelEntry { e.Symbol = s; return e }
