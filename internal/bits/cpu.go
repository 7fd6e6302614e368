package bits

import "golang.org/x/sys/cpu"

// hasAVX2 gates the unrolled unsplit fast path: Unsplit has no assembly
// kernel (this package ships no .s files), but the unrolled loop benefits
// from the wider write combining AVX2-capable cores do well.
var hasAVX2 = cpu.X86.HasAVX2

// minLenUnroll: below this size the lane-at-a-time loop already runs in
// L1 and unrolling only adds overhead.
const minLenUnroll = 64
