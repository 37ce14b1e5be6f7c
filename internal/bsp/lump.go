package bsp

import "fmt"

// LumpCount is the number of lump slots in every VBSP header
const LumpCount = 64

// Lump describes where one lump lives inside the BSP file
type Lump struct {
	Offset  int32
	Length  int32
	Version int32
	FourCC  [4]byte // uncompressed size for LZMA lumps, zero otherwise
}

// Exists reports whether the lump holds any data
func (l Lump) Exists() bool {
	return l.Offset > 0 && l.Length > 0
}

// LumpIndex is a lump's slot in the header. The slot, not the position of
// the data in the file, determines what the lump contains.
type LumpIndex int

const (
	LumpEntities LumpIndex = iota
	LumpPlanes
	LumpTextureData
	LumpVertices
	LumpVisibility
	LumpNodes
	LumpTextureInfo
	LumpFaces
	LumpLighting
	LumpOcclusion
	LumpLeafs
	LumpFaceIDs // Source 2007
	LumpEdges
	LumpSurfaceEdges
	LumpModels
	LumpWorldLights
	LumpLeafFaces
	LumpLeafBrushes
	LumpBrushes
	LumpBrushSides
	LumpAreas
	LumpAreaPortals
	LumpPortals        // unused in version 20+
	LumpClusters       // unused in version 20+
	LumpPortalVerts    // unused in version 20+
	LumpClusterPortals // unused in version 20+
	LumpDisplacementInfo
	LumpOriginalFaces
	LumpPhysicsDisplacement
	LumpPhysicsCollision
	LumpVertexNormals
	LumpVertexNormalIndices
	LumpDisplacementLightmapAlphas
	LumpDisplacementVertices
	LumpDisplacementLightmapSamplePositions
	LumpGameLump
	LumpLeafWaterData
	LumpPrimitives
	LumpPrimitiveVertices
	LumpPrimitiveIndices
	LumpPakFile
	LumpClipPortalVertices
	LumpCubemaps
	LumpTextureStringData
	LumpTextureStringTable
	LumpOverlays
	LumpLeafDistanceToWater
	LumpFaceMacroTextureInfo
	LumpDisplacementTris
	LumpPhysicsCollideSurface
	LumpWaterOverlays
	LumpLightMapPages
	LumpLightMapPageInfo
	LumpLightingHDR
	LumpWorldLightsHDR
	LumpLeafAmbientLightingHDR
	LumpLeafAmbientLighting
	LumpXZipPakFile
	LumpFacesHDR
	LumpMapFlags
	LumpOverlayFades
	LumpOverlaySystemLevels
	LumpPhysicsLevel
	LumpDisplacementMultiblend
)

var lumpNames = [LumpCount]string{
	"Entities", "Planes", "TextureData", "Vertices", "Visibility", "Nodes",
	"TextureInfo", "Faces", "Lighting", "Occlusion", "Leafs", "FaceIDs",
	"Edges", "SurfaceEdges", "Models", "WorldLights", "LeafFaces",
	"LeafBrushes", "Brushes", "BrushSides", "Areas", "AreaPortals",
	"Portals", "Clusters", "PortalVerts", "ClusterPortals",
	"DisplacementInfo", "OriginalFaces", "PhysicsDisplacement",
	"PhysicsCollision", "VertexNormals", "VertexNormalIndices",
	"DisplacementLightmapAlphas", "DisplacementVertices",
	"DisplacementLightmapSamplePositions", "GameLump", "LeafWaterData",
	"Primitives", "PrimitiveVertices", "PrimitiveIndices", "PakFile",
	"ClipPortalVertices", "Cubemaps", "TextureStringData",
	"TextureStringTable", "Overlays", "LeafDistanceToWater",
	"FaceMacroTextureInfo", "DisplacementTris", "PhysicsCollideSurface",
	"WaterOverlays", "LightMapPages", "LightMapPageInfo", "LightingHDR",
	"WorldLightsHDR", "LeafAmbientLightingHDR", "LeafAmbientLighting",
	"XZipPakFile", "FacesHDR", "MapFlags", "OverlayFades",
	"OverlaySystemLevels", "PhysicsLevel", "DisplacementMultiblend",
}

// Valid reports whether i names one of the 64 header slots
func (i LumpIndex) Valid() bool {
	return i >= 0 && i < LumpCount
}

func (i LumpIndex) String() string {
	if !i.Valid() {
		return fmt.Sprintf("LumpIndex(%d)", int(i))
	}
	return lumpNames[i]
}
